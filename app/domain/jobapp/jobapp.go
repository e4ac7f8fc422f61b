// Package jobapp maintains the job read model handlers.
package jobapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/app/sdk/query"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/web"
)

type app struct {
	jobBus *jobbus.Core
}

// newApp constructs a job app API for use.
func newApp(jobBus *jobbus.Core) *app {
	return &app{
		jobBus: jobBus,
	}
}

// query returns the tenant's jobs with paging.
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
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.NewFieldErrors("filter", err)
	}
	filter.TenantID = &id.TenantID

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, jobbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	jobs, err := a.jobBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.jobBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppJobs(jobs), total, pg)
}

// queryByID returns a single job scoped to the caller's tenant.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	jobID, err := uuid.Parse(web.Param(r, "job_id"))
	if err != nil {
		return errs.NewFieldErrors("job_id", err)
	}

	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	job, err := a.jobBus.QueryByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query job: %s", err)
	}

	// A job is only visible inside its own tenant.
	if job.TenantID != id.TenantID {
		return errs.New(errs.NotFound, jobbus.ErrNotFound)
	}

	return toAppJob(job)
}
