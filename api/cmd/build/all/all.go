// Package all binds every route group into the service.
package all

import (
	"github.com/voxgate/voxgate/app/domain/authapp"
	"github.com/voxgate/voxgate/app/domain/checkapp"
	"github.com/voxgate/voxgate/app/domain/jobapp"
	"github.com/voxgate/voxgate/app/domain/keyapp"
	"github.com/voxgate/voxgate/app/domain/modelapp"
	"github.com/voxgate/voxgate/app/domain/speechapp"
	"github.com/voxgate/voxgate/app/domain/transcribeapp"
	"github.com/voxgate/voxgate/app/domain/usageapp"
	"github.com/voxgate/voxgate/app/sdk/mux"
	"github.com/voxgate/voxgate/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

func (add) Add(app *web.App, cfg mux.Config) {

	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	authapp.Routes(app, authapp.Config{
		Auth: cfg.AuthConfig.Auth,
	})

	speechapp.Routes(app, speechapp.Config{
		Log:      cfg.Log,
		Auth:     cfg.AuthConfig.Auth,
		KeyBus:   cfg.BusConfig.KeyBus,
		JobBus:   cfg.BusConfig.JobBus,
		VoiceBus: cfg.BusConfig.VoiceBus,
		Limiter:  cfg.Limiter,
	})

	transcribeapp.Routes(app, transcribeapp.Config{
		Log:     cfg.Log,
		Auth:    cfg.AuthConfig.Auth,
		KeyBus:  cfg.BusConfig.KeyBus,
		JobBus:  cfg.BusConfig.JobBus,
		Limiter: cfg.Limiter,
	})

	modelapp.Routes(app, modelapp.Config{
		Auth:     cfg.AuthConfig.Auth,
		MLClient: cfg.MLClient,
	})

	usageapp.Routes(app, usageapp.Config{
		Auth:     cfg.AuthConfig.Auth,
		UsageBus: cfg.BusConfig.UsageBus,
	})

	keyapp.Routes(app, keyapp.Config{
		Auth:   cfg.AuthConfig.Auth,
		KeyBus: cfg.BusConfig.KeyBus,
	})

	jobapp.Routes(app, jobapp.Config{
		Auth:   cfg.AuthConfig.Auth,
		JobBus: cfg.BusConfig.JobBus,
	})
}
