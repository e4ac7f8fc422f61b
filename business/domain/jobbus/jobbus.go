// Package jobbus provides business access to the job domain. It owns the job
// state machine for synthesis and recognition work: it creates the job record,
// dispatches the work to the inference provider, persists the outcome, and
// appends the billable usage.
package jobbus

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/kind"
	"github.com/voxgate/voxgate/foundation/logger"
	"github.com/voxgate/voxgate/foundation/mlclient"
	"github.com/voxgate/voxgate/foundation/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Client facing error messages. Provider and storage detail stays in the logs.
const (
	msgSynthesisFailed   = "synthesis could not be completed"
	msgRecognitionFailed = "transcription could not be completed"
)

var (
	ErrNotFound = errors.New("job not found")

	// ErrProviderFailure marks errors coming from the inference provider so
	// the transport layer can map them without seeing provider detail.
	ErrProviderFailure = errors.New("provider failure")
)

// defaultBatchLimit caps concurrent dispatches within one batch submission so
// a single large batch cannot overload the inference backend.
const defaultBatchLimit = 4

// Provider abstracts the remote inference services a job dispatches to.
type Provider interface {
	Synthesize(ctx context.Context, params mlclient.SynthesizeParams) (mlclient.SynthesisResult, error)
	Transcribe(ctx context.Context, params mlclient.TranscribeParams) (mlclient.TranscriptionResult, error)
}

// Storer defines the behavior required by the jobbus to interact with the
// database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, job Job) error
	Update(ctx context.Context, job Job) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Job, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, jobID uuid.UUID) (Job, error)
}

// Core manages the set of APIs for job access.
type Core struct {
	log        *logger.Logger
	storer     Storer
	usage      *usagebus.Core
	provider   Provider
	batchLimit int
}

// NewCore constructs a core for job access. A batchLimit of zero or less
// falls back to a conservative default.
func NewCore(log *logger.Logger, storer Storer, usage *usagebus.Core, provider Provider, batchLimit int) *Core {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}

	return &Core{
		log:        log,
		storer:     storer,
		usage:      usage,
		provider:   provider,
		batchLimit: batchLimit,
	}
}

// Synthesize runs one synthesis job end to end: persist the job, dispatch to
// the provider, persist the outcome and append usage. The job is created
// directly in PROCESSING since dispatch is synchronous. A provider failure is
// recorded on the job and returned to the caller with a sanitized job message.
func (c *Core) Synthesize(ctx context.Context, sub Submitter, req SynthesisRequest) (Job, mlclient.SynthesisResult, error) {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.synthesize")
	defer span.End()

	job, err := c.create(ctx, sub, kind.Synthesis, fmt.Sprintf("text:chars=%d", utf8.RuneCountInString(req.Text)))
	if err != nil {
		return Job{}, mlclient.SynthesisResult{}, err
	}

	res, err := c.provider.Synthesize(ctx, mlclient.SynthesizeParams{
		Text:     req.Text,
		Language: req.Language,
		VoiceID:  req.VoiceID,
		Emotion:  req.Emotion,
		Speed:    req.Speed,
	})
	if err != nil {
		job = c.fail(ctx, job, msgSynthesisFailed)
		return job, mlclient.SynthesisResult{}, fmt.Errorf("%w: synthesize: jobID[%s]: %s", ErrProviderFailure, job.ID, err)
	}

	job, err = c.complete(ctx, job, res.AudioPath)
	if err != nil {
		return job, mlclient.SynthesisResult{}, err
	}

	meta := map[string]string{"language": req.Language}
	if req.VoiceID != "" {
		meta["voice_id"] = req.VoiceID
	}
	c.appendUsage(ctx, sub, job, synthesisUnits(req.Text, res), meta)

	return job, res, nil
}

// Transcribe runs one recognition job end to end with the same lifecycle as
// Synthesize.
func (c *Core) Transcribe(ctx context.Context, sub Submitter, req RecognitionRequest) (Job, mlclient.TranscriptionResult, error) {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.transcribe")
	defer span.End()

	job, err := c.create(ctx, sub, kind.Recognition, fmt.Sprintf("audio:mime=%s;bytes=%d", req.MimeType, len(req.Audio)))
	if err != nil {
		return Job{}, mlclient.TranscriptionResult{}, err
	}

	res, err := c.provider.Transcribe(ctx, mlclient.TranscribeParams{
		Audio:        req.Audio,
		MimeType:     req.MimeType,
		LanguageHint: req.LanguageHint,
	})
	if err != nil {
		job = c.fail(ctx, job, msgRecognitionFailed)
		return job, mlclient.TranscriptionResult{}, fmt.Errorf("%w: transcribe: jobID[%s]: %s", ErrProviderFailure, job.ID, err)
	}

	job, err = c.complete(ctx, job, res.Text)
	if err != nil {
		return job, mlclient.TranscriptionResult{}, err
	}

	meta := map[string]string{"language": res.Language}
	if res.ModelUsed != "" {
		meta["model"] = res.ModelUsed
	}
	c.appendUsage(ctx, sub, job, recognitionUnits(res), meta)

	return job, res, nil
}

// SynthesizeOutcome is the per-item result of a batch synthesis submission.
type SynthesizeOutcome struct {
	Job    Job
	Result mlclient.SynthesisResult
	Err    error
}

// SynthesizeBatch dispatches every item through a bounded worker pool. One
// item failing never aborts its siblings, so the returned slice always has
// one outcome per input in input order.
func (c *Core) SynthesizeBatch(ctx context.Context, sub Submitter, reqs []SynthesisRequest) []SynthesizeOutcome {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.synthesizeBatch", attribute.Int("items", len(reqs)))
	defer span.End()

	outcomes := make([]SynthesizeOutcome, len(reqs))

	var g errgroup.Group
	g.SetLimit(c.batchLimit)

	for i, req := range reqs {
		g.Go(func() error {
			job, res, err := c.Synthesize(ctx, sub, req)
			outcomes[i] = SynthesizeOutcome{Job: job, Result: res, Err: err}
			return nil
		})
	}

	g.Wait()

	return outcomes
}

// TranscribeOutcome is the per-item result of a batch recognition submission.
type TranscribeOutcome struct {
	Job    Job
	Result mlclient.TranscriptionResult
	Err    error
}

// TranscribeBatch dispatches every item through a bounded worker pool with
// the same isolation semantics as SynthesizeBatch.
func (c *Core) TranscribeBatch(ctx context.Context, sub Submitter, reqs []RecognitionRequest) []TranscribeOutcome {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.transcribeBatch", attribute.Int("items", len(reqs)))
	defer span.End()

	outcomes := make([]TranscribeOutcome, len(reqs))

	var g errgroup.Group
	g.SetLimit(c.batchLimit)

	for i, req := range reqs {
		g.Go(func() error {
			job, res, err := c.Transcribe(ctx, sub, req)
			outcomes[i] = TranscribeOutcome{Job: job, Result: res, Err: err}
			return nil
		})
	}

	g.Wait()

	return outcomes
}

// Query retrieves a list of existing jobs.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Job, error) {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.query")
	defer span.End()

	jobs, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return jobs, nil
}

// Count returns the total number of jobs.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the job by the specified ID.
func (c *Core) QueryByID(ctx context.Context, jobID uuid.UUID) (Job, error) {
	ctx, span := otel.AddSpan(ctx, "business.jobbus.queryByID")
	defer span.End()

	job, err := c.storer.QueryByID(ctx, jobID)
	if err != nil {
		return Job{}, fmt.Errorf("query: jobID[%s]: %w", jobID, err)
	}

	return job, nil
}

// =============================================================================

func (c *Core) create(ctx context.Context, sub Submitter, knd kind.Kind, inputRef string) (Job, error) {
	now := time.Now()

	job := Job{
		ID:        uuid.New(),
		TenantID:  sub.TenantID,
		UserID:    sub.UserID,
		KeyID:     sub.KeyID,
		Kind:      knd,
		Status:    StatusProcessing,
		InputRef:  inputRef,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storer.Create(ctx, job); err != nil {
		return Job{}, fmt.Errorf("create: %w", err)
	}

	return job, nil
}

func (c *Core) complete(ctx context.Context, job Job, resultRef string) (Job, error) {
	now := time.Now()
	job.Status = StatusCompleted
	job.ResultRef = resultRef
	job.UpdatedAt = now
	job.CompletedAt = &now

	if err := c.storer.Update(ctx, job); err != nil {
		return job, fmt.Errorf("update: jobID[%s]: %w", job.ID, err)
	}

	return job, nil
}

// fail is best effort: by the time it runs the request is already failing, so
// a storage fault here is only logged.
func (c *Core) fail(ctx context.Context, job Job, msg string) Job {
	now := time.Now()
	job.Status = StatusFailed
	job.ErrorMessage = msg
	job.UpdatedAt = now
	job.CompletedAt = &now

	if err := c.storer.Update(ctx, job); err != nil {
		c.log.Error(ctx, "jobbus: mark failed", "job_id", job.ID, "err", err)
	}

	return job
}

// appendUsage records the billable units for a completed job. A ledger fault
// never overturns the completed job; it is logged for reconciliation.
func (c *Core) appendUsage(ctx context.Context, sub Submitter, job Job, units float64, meta map[string]string) {
	nr := usagebus.NewRecord{
		TenantID: sub.TenantID,
		KeyID:    sub.KeyID,
		JobID:    job.ID,
		Kind:     job.Kind,
		Units:    units,
		Metadata: meta,
	}

	if _, err := c.usage.Append(ctx, nr); err != nil {
		c.log.Error(ctx, "jobbus: append usage", "job_id", job.ID, "units", units, "err", err)
	}
}

// synthesisUnits bills by character count, preferring a provider reported
// count over the locally computed one.
func synthesisUnits(text string, res mlclient.SynthesisResult) float64 {
	if v, ok := metaFloat(res.Meta, "characters"); ok && v >= 0 {
		return v
	}

	return float64(utf8.RuneCountInString(text))
}

// recognitionUnits bills by elapsed audio seconds: provider reported duration
// when present, else the end of the last word timestamp, else zero.
func recognitionUnits(res mlclient.TranscriptionResult) float64 {
	if v, ok := metaFloat(res.Meta, "duration"); ok && v >= 0 {
		return v
	}

	if n := len(res.Timestamps); n > 0 {
		if end := res.Timestamps[n-1].End; end > 0 {
			return end
		}
	}

	return 0
}

func metaFloat(meta map[string]any, key string) (float64, bool) {
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}

	return 0, false
}
