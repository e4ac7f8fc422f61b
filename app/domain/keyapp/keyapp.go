// Package keyapp maintains the API key management handlers.
package keyapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/app/sdk/query"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/web"
)

type app struct {
	keyBus *keybus.Core
}

// newApp constructs a key app API for use.
func newApp(keyBus *keybus.Core) *app {
	return &app{
		keyBus: keyBus,
	}
}

// create mints a new API key. The clear text secret appears only in this
// response.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewKey
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	nk, err := toBusNewKey(id.TenantID, app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	key, secret, err := a.keyBus.Create(ctx, nk)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create: %s", err)
	}

	return toAppCreatedKey(key, secret)
}

// query returns the tenant's keys with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	pg, err := page.Parse(qp.Page, qp.Rows)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	filter, err := parseFilter(qp)
	if err != nil {
		return errs.NewFieldErrors("filter", err)
	}
	filter.TenantID = &id.TenantID

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, keybus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	keys, err := a.keyBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.keyBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppKeys(keys), total, pg)
}

// revoke permanently disables a key. Revocation on an already revoked key is
// a no-op.
func (a *app) revoke(ctx context.Context, r *http.Request) web.Encoder {
	keyID, err := uuid.Parse(web.Param(r, "key_id"))
	if err != nil {
		return errs.NewFieldErrors("key_id", err)
	}

	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	key, err := a.keyBus.QueryByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, keybus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query key: %s", err)
	}

	// A key is only visible inside its own tenant.
	if key.TenantID != id.TenantID {
		return errs.New(errs.NotFound, keybus.ErrNotFound)
	}

	key, err = a.keyBus.Revoke(ctx, key)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "revoke: keyID[%s]: %s", keyID, err)
	}

	return toAppKey(key)
}
