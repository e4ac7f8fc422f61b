// Package mid provides app level middleware support.
package mid

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/scope"
)

func checkIsError(e web.Encoder) error {
	err, hasError := e.(error)
	if hasError {
		return err
	}

	return nil
}

// =============================================================================

// Identity is the resolved credential context for one request. At least one
// of UserID and KeyID is set for authenticated requests; both are set when a
// key and a bearer token from the same tenant arrive together. TenantID is
// the authoritative tenant for everything downstream.
type Identity struct {
	TenantID        uuid.UUID
	UserID          *uuid.UUID
	KeyID           *uuid.UUID
	Scopes          []scope.Scope
	RateLimitPerMin int
}

// Resolved reports whether a credential was presented on the request.
func (id Identity) Resolved() bool {
	return id.UserID != nil || id.KeyID != nil
}

// HasScope reports whether the identity carries the given capability.
func (id Identity) HasScope(s scope.Scope) bool {
	return scope.Contains(id.Scopes, s)
}

// =============================================================================

type ctxKey int

const (
	claimKey ctxKey = iota + 1
	userKey
	identityKey
	trKey
)

func setClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimKey, claims)
}

// GetClaims returns the claims from the context.
func GetClaims(ctx context.Context) auth.Claims {
	v, ok := ctx.Value(claimKey).(auth.Claims)
	if !ok {
		return auth.Claims{}
	}
	return v
}

func setUser(ctx context.Context, usr userbus.User) context.Context {
	return context.WithValue(ctx, userKey, usr)
}

// GetUser returns the user from the context.
func GetUser(ctx context.Context) (userbus.User, error) {
	v, ok := ctx.Value(userKey).(userbus.User)
	if !ok {
		return userbus.User{}, errors.New("user not found in context")
	}

	return v, nil
}

func setIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the resolved identity from the context.
func GetIdentity(ctx context.Context) (Identity, error) {
	v, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}, errors.New("identity not found in context")
	}

	return v, nil
}

func setTran(ctx context.Context, tx sqldb.CommitRollbacker) context.Context {
	return context.WithValue(ctx, trKey, tx)
}

// GetTran retrieves the value that can manage a transaction.
func GetTran(ctx context.Context) (sqldb.CommitRollbacker, error) {
	v, ok := ctx.Value(trKey).(sqldb.CommitRollbacker)
	if !ok {
		return nil, errors.New("transaction not found in context")
	}

	return v, nil
}
