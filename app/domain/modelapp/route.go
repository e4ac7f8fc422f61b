package modelapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/role"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth     *auth.Auth
	MLClient *mlclient.Client
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.MLClient)

	app.HandlerFunc(http.MethodGet, version, "/models/status", api.status, authen)

	app.HandlerFunc(http.MethodPost, version, "/models/reload", api.reload,
		authen, mid.Authorize(cfg.Auth, role.Owner, role.Admin))
}
