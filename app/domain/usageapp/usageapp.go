// Package usageapp maintains the usage ledger read handlers.
package usageapp

import (
	"context"
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/app/sdk/query"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/kind"
)

type app struct {
	usageBus *usagebus.Core
}

// newApp constructs a usage app API for use.
func newApp(usageBus *usagebus.Core) *app {
	return &app{
		usageBus: usageBus,
	}
}

// queryRecords lists the tenant's usage records with paging.
func (a *app) queryRecords(ctx context.Context, r *http.Request) web.Encoder {
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
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.NewFieldErrors("filter", err)
	}
	filter.TenantID = &id.TenantID

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, usagebus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	recs, err := a.usageBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.usageBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppRecords(recs), total, pg)
}

// querySummary totals the tenant's billable units per usage kind.
func (a *app) querySummary(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	filter, err := parseFilter(qp)
	if err != nil {
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.NewFieldErrors("filter", err)
	}
	filter.TenantID = &id.TenantID

	var summary Summary

	synthesis := kind.Synthesis
	filter.Kind = &synthesis
	if summary.SynthesisCharacters, err = a.usageBus.SumUnits(ctx, filter); err != nil {
		return errs.Errorf(errs.Internal, "sum synthesis: %s", err)
	}

	recognition := kind.Recognition
	filter.Kind = &recognition
	if summary.RecognitionSeconds, err = a.usageBus.SumUnits(ctx, filter); err != nil {
		return errs.Errorf(errs.Internal, "sum recognition: %s", err)
	}

	return summary
}
