package jobapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth   *auth.Auth
	JobBus *jobbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.JobBus)

	app.HandlerFunc(http.MethodGet, version, "/jobs", api.query, authen)
	app.HandlerFunc(http.MethodGet, version, "/jobs/{job_id}", api.queryByID, authen)
}
