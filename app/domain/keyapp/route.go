package keyapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth   *auth.Auth
	KeyBus *keybus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	manage := mid.Authorize(cfg.Auth, role.Owner, role.Admin)

	api := newApp(cfg.KeyBus)

	app.HandlerFunc(http.MethodGet, version, "/api-keys", api.query,
		authen, mid.Authorize(cfg.Auth, role.Owner, role.Admin, role.Developer))

	app.HandlerFunc(http.MethodPost, version, "/api-keys", api.create, authen, manage)

	app.HandlerFunc(http.MethodDelete, version, "/api-keys/{key_id}", api.revoke, authen, manage)
}
