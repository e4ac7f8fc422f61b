package authapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth *auth.Auth
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Auth)

	app.HandlerFunc(http.MethodPost, version, "/auth/login", api.login)
}
