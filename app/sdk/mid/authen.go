package mid

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/scope"
	"github.com/voxgate/voxgate/foundation/logger"
)

// apiKeyHeader carries a machine credential secret.
const apiKeyHeader = "X-API-Key"

// Authenticate validates the JWT in the Authorization header and requires it
// to be present. Used for routes that only accept a human session.
func Authenticate(a *auth.Auth) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			authStr := r.Header.Get("authorization")
			if authStr == "" {
				return errs.New(errs.Unauthenticated, errors.New("missing authorization header"))
			}

			parts := strings.Split(authStr, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return errs.New(errs.Unauthenticated, errors.New("expected authorization header format: Bearer <token>"))
			}

			claims, usr, err := a.Authenticate(ctx, authStr)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			ctx = setClaims(ctx, claims)
			ctx = setUser(ctx, usr)
			ctx = setIdentity(ctx, Identity{
				TenantID: usr.TenantID,
				UserID:   &usr.ID,
				Scopes:   scope.All(),
			})

			return next(ctx, r)
		}

		return h
	}

	return m
}

// Identify resolves an identity from a bearer token, an API key, or both.
// Absence of credentials is not an error here; a malformed or invalid
// credential is. When both are presented the bearer token's tenant is
// authoritative, and a key belonging to a different tenant is dropped from
// the identity so it never reaches jobs, usage records, or rate limiting.
// RequireIdentity enforces presence for protected routes.
func Identify(log *logger.Logger, a *auth.Auth, keyBus *keybus.Core) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			var id Identity

			if secret := r.Header.Get(apiKeyHeader); secret != "" {
				key, err := keyBus.Authenticate(ctx, secret)
				if err != nil {
					return errs.New(errs.Unauthenticated, errors.New("invalid api key"))
				}

				id.TenantID = key.TenantID
				id.KeyID = &key.ID
				id.Scopes = key.Scopes
				id.RateLimitPerMin = key.RateLimitPerMin
			}

			if authStr := r.Header.Get("authorization"); authStr != "" {
				parts := strings.Split(authStr, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					return errs.New(errs.Unauthenticated, errors.New("expected authorization header format: Bearer <token>"))
				}

				claims, usr, err := a.Authenticate(ctx, authStr)
				if err != nil {
					return errs.New(errs.Unauthenticated, err)
				}

				if id.KeyID != nil && id.TenantID != usr.TenantID {
					log.Info(ctx, "identify: ignoring api key from another tenant",
						"key_id", *id.KeyID, "key_tenant_id", id.TenantID, "tenant_id", usr.TenantID)
					id.KeyID = nil
					id.RateLimitPerMin = 0
				}

				id.TenantID = usr.TenantID
				id.UserID = &usr.ID
				id.Scopes = scope.All()

				ctx = setClaims(ctx, claims)
				ctx = setUser(ctx, usr)
			}

			ctx = setIdentity(ctx, id)

			return next(ctx, r)
		}

		return h
	}

	return m
}

// RequireIdentity rejects requests that carry no resolved credential.
func RequireIdentity() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			id, err := GetIdentity(ctx)
			if err != nil || !id.Resolved() {
				return errs.New(errs.Unauthenticated, errors.New("credentials required"))
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
