package transcribeapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/throttle"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/scope"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *logger.Logger
	Auth    *auth.Auth
	KeyBus  *keybus.Core
	JobBus  *jobbus.Core
	Limiter *throttle.Limiter
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	identify := mid.Identify(cfg.Log, cfg.Auth, cfg.KeyBus)
	require := mid.RequireIdentity()
	ratelimit := mid.RateLimit(cfg.Limiter)

	api := newApp(cfg.JobBus)

	app.HandlerFunc(http.MethodPost, version, "/transcribe", api.transcribe,
		identify, require, mid.AuthorizeScope(scope.Transcribe), ratelimit)

	app.HandlerFunc(http.MethodPost, version, "/batch-transcribe", api.transcribeBatch,
		identify, require, mid.AuthorizeScope(scope.Transcribe), ratelimit)
}
