package jobbus_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/kind"
	"github.com/voxgate/voxgate/foundation/logger"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

// =============================================================================
// Fakes

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]jobbus.Job
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]jobbus.Job)}
}

func (s *fakeJobStore) NewWithTx(tx sqldb.CommitRollbacker) (jobbus.Storer, error) {
	return s, nil
}

func (s *fakeJobStore) Create(ctx context.Context, job jobbus.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeJobStore) Update(ctx context.Context, job jobbus.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeJobStore) Query(ctx context.Context, filter jobbus.QueryFilter, orderBy order.By, page page.Page) ([]jobbus.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []jobbus.Job
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s *fakeJobStore) Count(ctx context.Context, filter jobbus.QueryFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs), nil
}

func (s *fakeJobStore) QueryByID(ctx context.Context, jobID uuid.UUID) (jobbus.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return jobbus.Job{}, jobbus.ErrNotFound
	}
	return job, nil
}

func (s *fakeJobStore) get(jobID uuid.UUID) jobbus.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[jobID]
}

type fakeUsageStore struct {
	mu      sync.Mutex
	records []usagebus.Record
}

func (s *fakeUsageStore) NewWithTx(tx sqldb.CommitRollbacker) (usagebus.Storer, error) {
	return s, nil
}

func (s *fakeUsageStore) Create(ctx context.Context, rec usagebus.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeUsageStore) Query(ctx context.Context, filter usagebus.QueryFilter, orderBy order.By, page page.Page) ([]usagebus.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]usagebus.Record(nil), s.records...), nil
}

func (s *fakeUsageStore) Count(ctx context.Context, filter usagebus.QueryFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *fakeUsageStore) SumUnits(ctx context.Context, filter usagebus.QueryFilter) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, rec := range s.records {
		total += rec.Units
	}
	return total, nil
}

func (s *fakeUsageStore) all() []usagebus.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]usagebus.Record(nil), s.records...)
}

// fakeProvider fails any synthesis whose text (or transcription whose
// language hint) matches failOn.
type fakeProvider struct {
	failOn     string
	synthesis  mlclient.SynthesisResult
	transcript mlclient.TranscriptionResult
}

func (p *fakeProvider) Synthesize(ctx context.Context, params mlclient.SynthesizeParams) (mlclient.SynthesisResult, error) {
	if p.failOn != "" && params.Text == p.failOn {
		return mlclient.SynthesisResult{}, errors.New("model crashed")
	}
	return p.synthesis, nil
}

func (p *fakeProvider) Transcribe(ctx context.Context, params mlclient.TranscribeParams) (mlclient.TranscriptionResult, error) {
	if p.failOn != "" && params.LanguageHint == p.failOn {
		return mlclient.TranscriptionResult{}, errors.New("model crashed")
	}
	return p.transcript, nil
}

func newTestCore(t *testing.T, provider jobbus.Provider) (*jobbus.Core, *fakeJobStore, *fakeUsageStore) {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	jobs := newFakeJobStore()
	usage := &fakeUsageStore{}
	core := jobbus.NewCore(log, jobs, usagebus.NewCore(usage), provider, 2)
	return core, jobs, usage
}

func testSubmitter() (jobbus.Submitter, uuid.UUID) {
	tenantID := uuid.New()
	keyID := uuid.New()
	return jobbus.Submitter{TenantID: tenantID, KeyID: &keyID}, tenantID
}

// =============================================================================

func TestSynthesize_Success(t *testing.T) {
	provider := &fakeProvider{
		synthesis: mlclient.SynthesisResult{
			AudioPath: "/audio/out.wav",
			Status:    "success",
		},
	}
	core, jobs, usage := newTestCore(t, provider)
	sub, tenantID := testSubmitter()

	job, res, err := core.Synthesize(context.Background(), sub, jobbus.SynthesisRequest{
		Text:     "hello there",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	if res.AudioPath != "/audio/out.wav" {
		t.Errorf("expected audio path to pass through, got %q", res.AudioPath)
	}

	stored := jobs.get(job.ID)
	if stored.Status != jobbus.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", stored.Status)
	}
	if stored.TenantID != tenantID {
		t.Errorf("job tenant mismatch: got %s", stored.TenantID)
	}
	if stored.CompletedAt == nil {
		t.Error("completed job should carry a completion time")
	}
	if stored.ResultRef != "/audio/out.wav" {
		t.Errorf("result ref should reference the audio, got %q", stored.ResultRef)
	}

	recs := usage.all()
	if len(recs) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(recs))
	}
	if recs[0].Units != 11 {
		t.Errorf("expected 11 characters billed, got %v", recs[0].Units)
	}
	if !recs[0].Kind.Equal(kind.Synthesis) {
		t.Errorf("expected SYNTHESIS usage, got %s", recs[0].Kind)
	}
	if recs[0].JobID != job.ID {
		t.Error("usage record should reference the job")
	}
}

func TestSynthesize_ProviderReportedCharacters(t *testing.T) {
	provider := &fakeProvider{
		synthesis: mlclient.SynthesisResult{
			AudioPath: "/audio/out.wav",
			Meta:      map[string]any{"characters": float64(42)},
		},
	}
	core, _, usage := newTestCore(t, provider)
	sub, _ := testSubmitter()

	if _, _, err := core.Synthesize(context.Background(), sub, jobbus.SynthesisRequest{Text: "hi"}); err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	recs := usage.all()
	if len(recs) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(recs))
	}
	if recs[0].Units != 42 {
		t.Errorf("provider reported count should win, got %v", recs[0].Units)
	}
}

func TestSynthesize_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{failOn: "boom"}
	core, jobs, usage := newTestCore(t, provider)
	sub, _ := testSubmitter()

	job, _, err := core.Synthesize(context.Background(), sub, jobbus.SynthesisRequest{Text: "boom"})
	if !errors.Is(err, jobbus.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}

	stored := jobs.get(job.ID)
	if stored.Status != jobbus.StatusFailed {
		t.Errorf("expected FAILED, got %s", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Error("failed job should carry an error message")
	}
	if stored.ErrorMessage != "synthesis could not be completed" {
		t.Errorf("error message should be sanitized, got %q", stored.ErrorMessage)
	}

	if len(usage.all()) != 0 {
		t.Error("failed job must not be billed")
	}
}

func TestSynthesizeBatch_IsolatesFailures(t *testing.T) {
	provider := &fakeProvider{
		failOn:    "boom",
		synthesis: mlclient.SynthesisResult{AudioPath: "/audio/out.wav"},
	}
	core, _, usage := newTestCore(t, provider)
	sub, _ := testSubmitter()

	reqs := []jobbus.SynthesisRequest{
		{Text: "first"},
		{Text: "boom"},
		{Text: "third"},
	}

	outcomes := core.SynthesizeBatch(context.Background(), sub, reqs)
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].Err != nil {
		t.Errorf("item 0 should succeed: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, jobbus.ErrProviderFailure) {
		t.Errorf("item 1 should fail with ErrProviderFailure, got %v", outcomes[1].Err)
	}
	if outcomes[2].Err != nil {
		t.Errorf("item 2 should succeed: %v", outcomes[2].Err)
	}

	if outcomes[1].Job.Status != jobbus.StatusFailed {
		t.Errorf("failed item should carry a FAILED job, got %s", outcomes[1].Job.Status)
	}

	if got := len(usage.all()); got != 2 {
		t.Errorf("only the 2 successful items should be billed, got %d records", got)
	}
}

func TestTranscribe_DurationFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		result mlclient.TranscriptionResult
		units  float64
	}{
		{
			name: "provider duration wins",
			result: mlclient.TranscriptionResult{
				Text:       "hello",
				Meta:       map[string]any{"duration": 12.5},
				Timestamps: []mlclient.Timestamp{{Start: 0, End: 99, Word: "hello"}},
			},
			units: 12.5,
		},
		{
			name: "last timestamp when no duration",
			result: mlclient.TranscriptionResult{
				Text: "hello world",
				Timestamps: []mlclient.Timestamp{
					{Start: 0, End: 0.8, Word: "hello"},
					{Start: 0.9, End: 1.6, Word: "world"},
				},
			},
			units: 1.6,
		},
		{
			name:   "zero when nothing reported",
			result: mlclient.TranscriptionResult{Text: "hello"},
			units:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{transcript: tt.result}
			core, _, usage := newTestCore(t, provider)
			sub, _ := testSubmitter()

			job, _, err := core.Transcribe(context.Background(), sub, jobbus.RecognitionRequest{
				Audio:    []byte("RIFF"),
				MimeType: "audio/wav",
			})
			if err != nil {
				t.Fatalf("transcribe failed: %v", err)
			}

			if !job.Kind.Equal(kind.Recognition) {
				t.Errorf("expected RECOGNITION job, got %s", job.Kind)
			}

			recs := usage.all()
			if len(recs) != 1 {
				t.Fatalf("expected 1 usage record, got %d", len(recs))
			}
			if recs[0].Units != tt.units {
				t.Errorf("expected %v units, got %v", tt.units, recs[0].Units)
			}
		})
	}
}

func TestTranscribe_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{failOn: "xx"}
	core, jobs, usage := newTestCore(t, provider)
	sub, _ := testSubmitter()

	job, _, err := core.Transcribe(context.Background(), sub, jobbus.RecognitionRequest{
		Audio:        []byte("RIFF"),
		MimeType:     "audio/wav",
		LanguageHint: "xx",
	})
	if !errors.Is(err, jobbus.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}

	stored := jobs.get(job.ID)
	if stored.Status != jobbus.StatusFailed {
		t.Errorf("expected FAILED, got %s", stored.Status)
	}
	if stored.ErrorMessage != "transcription could not be completed" {
		t.Errorf("error message should be sanitized, got %q", stored.ErrorMessage)
	}

	if len(usage.all()) != 0 {
		t.Error("failed job must not be billed")
	}
}
