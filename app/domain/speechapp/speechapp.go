// Package speechapp maintains the synthesis and voice handler set.
package speechapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/app/sdk/query"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/web"
)

// maxBatchItems caps one batch submission.
const maxBatchItems = 25

type app struct {
	jobBus   *jobbus.Core
	voiceBus *voicebus.Core
}

// newApp constructs a speech app API for use.
func newApp(jobBus *jobbus.Core, voiceBus *voicebus.Core) *app {
	return &app{
		jobBus:   jobBus,
		voiceBus: voiceBus,
	}
}

// synthesize dispatches one synthesis job and returns its outcome.
func (a *app) synthesize(ctx context.Context, r *http.Request) web.Encoder {
	var app SynthesizeRequest
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	sub, err := submitter(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	job, res, err := a.jobBus.Synthesize(ctx, sub, toBusSynthesis(app))
	if err != nil {
		return synthesisError(err)
	}

	return toAppSynthesis(job, res)
}

// synthesizeBatch dispatches every item and reports per-item outcomes. One
// item failing does not fail the batch response.
func (a *app) synthesizeBatch(ctx context.Context, r *http.Request) web.Encoder {
	var app BatchSynthesizeRequest
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	if len(app.Items) > maxBatchItems {
		return errs.Errorf(errs.InvalidArgument, "batch exceeds %d items", maxBatchItems)
	}

	sub, err := submitter(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	reqs := make([]jobbus.SynthesisRequest, len(app.Items))
	for i, item := range app.Items {
		reqs[i] = toBusSynthesis(item)
	}

	outcomes := a.jobBus.SynthesizeBatch(ctx, sub, reqs)

	return toAppBatchSynthesis(outcomes)
}

// queryVoices lists the stock voices plus the tenant's cloned voices.
func (a *app) queryVoices(ctx context.Context, r *http.Request) web.Encoder {
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
	filter.AvailableTo = &id.TenantID

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, voicebus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	voices, err := a.voiceBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.voiceBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppVoices(voices), total, pg)
}

// voiceClone registers a cloned voice profile for the tenant.
func (a *app) voiceClone(ctx context.Context, r *http.Request) web.Encoder {
	var app NewVoiceClone
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	nv, err := toBusNewVoice(id.TenantID, app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	voice, err := a.voiceBus.Create(ctx, nv)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create voice: %s", err)
	}

	return toAppVoice(voice)
}

// =============================================================================

func submitter(ctx context.Context) (jobbus.Submitter, error) {
	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return jobbus.Submitter{}, err
	}

	return jobbus.Submitter{
		TenantID: id.TenantID,
		UserID:   id.UserID,
		KeyID:    id.KeyID,
	}, nil
}

func synthesisError(err error) web.Encoder {
	if errors.Is(err, jobbus.ErrProviderFailure) {
		return errs.New(errs.Unavailable, errors.New("synthesis could not be completed"))
	}

	return errs.Errorf(errs.InternalOnlyLog, "synthesize: %s", err)
}
