package mid

import (
	"context"
	"fmt"
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/role"
	"github.com/voxgate/voxgate/business/types/scope"
)

// Authorize validates that the authenticated user holds one of the allowed
// roles. It runs after Authenticate or Identify has populated the claims.
func Authorize(a *auth.Auth, allowedRoles ...role.Role) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			claims := GetClaims(ctx)
			if claims.Subject == "" {
				return errs.New(errs.PermissionDenied, auth.ErrForbidden)
			}

			if err := a.Authorize(ctx, claims, allowedRoles...); err != nil {
				return errs.New(errs.PermissionDenied, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}

// AuthorizeScope validates that the resolved identity carries the capability
// the route requires. The check runs before any job is created.
func AuthorizeScope(s scope.Scope) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			id, err := GetIdentity(ctx)
			if err != nil {
				return errs.New(errs.PermissionDenied, err)
			}

			if !id.HasScope(s) {
				return errs.New(errs.PermissionDenied, fmt.Errorf("missing required scope %q", s))
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
