package speechapp

import (
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/sdk/throttle"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/role"
	"github.com/voxgate/voxgate/business/types/scope"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *logger.Logger
	Auth     *auth.Auth
	KeyBus   *keybus.Core
	JobBus   *jobbus.Core
	VoiceBus *voicebus.Core
	Limiter  *throttle.Limiter
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	identify := mid.Identify(cfg.Log, cfg.Auth, cfg.KeyBus)
	require := mid.RequireIdentity()
	ratelimit := mid.RateLimit(cfg.Limiter)
	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.JobBus, cfg.VoiceBus)

	app.HandlerFunc(http.MethodPost, version, "/synthesize", api.synthesize,
		identify, require, mid.AuthorizeScope(scope.Synthesize), ratelimit)

	app.HandlerFunc(http.MethodPost, version, "/synthesize-batch", api.synthesizeBatch,
		identify, require, mid.AuthorizeScope(scope.Synthesize), ratelimit)

	app.HandlerFunc(http.MethodGet, version, "/voices", api.queryVoices,
		identify, require, mid.AuthorizeScope(scope.Voices))

	app.HandlerFunc(http.MethodPost, version, "/voice-clone", api.voiceClone,
		authen, mid.Authorize(cfg.Auth, role.Owner, role.Admin))
}
