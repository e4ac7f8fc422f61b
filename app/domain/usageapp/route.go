package usageapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth     *auth.Auth
	UsageBus *usagebus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.UsageBus)

	app.HandlerFunc(http.MethodGet, version, "/usage", api.queryRecords, authen)
	app.HandlerFunc(http.MethodGet, version, "/usage/summary", api.querySummary, authen)
}
