package speechapp

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

func TestToAppBatchSynthesis_ItemWithoutJob(t *testing.T) {
	job := jobbus.Job{
		ID:           uuid.New(),
		Status:       jobbus.StatusFailed,
		ErrorMessage: "synthesis could not be completed",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	outcomes := []jobbus.SynthesizeOutcome{
		{Job: job, Err: errors.New("provider down")},
		{Err: errors.New("db: connection refused")},
	}

	batch := toAppBatchSynthesis(outcomes)

	if got := batch.Items[0].JobID; got != job.ID.String() {
		t.Errorf("expected job id %s, got %q", job.ID, got)
	}
	if got := batch.Items[0].Error; got != job.ErrorMessage {
		t.Errorf("expected recorded message %q, got %q", job.ErrorMessage, got)
	}

	// The second item never got a job. The response must not invent a nil
	// uuid id or ship an empty error.
	if got := batch.Items[1].JobID; got != "" {
		t.Errorf("expected no job id, got %q", got)
	}
	if got := batch.Items[1].Status; got != jobbus.StatusFailed.String() {
		t.Errorf("expected status %s, got %q", jobbus.StatusFailed, got)
	}
	if batch.Items[1].Error == "" {
		t.Error("expected a failure message on the item")
	}
}

func TestToAppBatchSynthesis_Success(t *testing.T) {
	job := jobbus.Job{
		ID:        uuid.New(),
		Status:    jobbus.StatusCompleted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	duration := 1.25
	res := mlclient.SynthesisResult{
		AudioPath: "/outputs/audio.wav",
		Duration:  &duration,
	}

	batch := toAppBatchSynthesis([]jobbus.SynthesizeOutcome{{Job: job, Result: res}})

	item := batch.Items[0]
	if item.JobID != job.ID.String() {
		t.Errorf("expected job id %s, got %q", job.ID, item.JobID)
	}
	if item.AudioPath != res.AudioPath {
		t.Errorf("expected audio path %q, got %q", res.AudioPath, item.AudioPath)
	}
	if item.Error != "" {
		t.Errorf("expected no error on a successful item, got %q", item.Error)
	}
}
