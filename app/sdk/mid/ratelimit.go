package mid

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/sdk/throttle"
	"github.com/voxgate/voxgate/business/sdk/web"
)

// RateLimit admits or rejects the request against the throughput limiter.
// The bucket key prefers the strongest identity available: credential id,
// then tenant id, then the raw network address. The effective limit is the
// route override when given, else the credential's per-minute override, else
// the limiter's default.
func RateLimit(limiter *throttle.Limiter, override ...int) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			var key string
			var limit int

			id, err := GetIdentity(ctx)
			switch {
			case err == nil && id.KeyID != nil:
				key = "key:" + id.KeyID.String()
				limit = id.RateLimitPerMin

			case err == nil && id.Resolved():
				key = "tenant:" + id.TenantID.String()

			default:
				key = "addr:" + r.RemoteAddr
			}

			if len(override) > 0 && override[0] > 0 {
				limit = override[0]
			}

			if err := limiter.Check(key, limit); err != nil {
				var te *throttle.Error
				if errors.As(err, &te) {
					if w := web.GetWriter(ctx); w != nil {
						w.Header().Set("Retry-After", strconv.Itoa(te.RetryAfterSeconds()))
					}
				}

				return errs.New(errs.ResourceExhausted, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
