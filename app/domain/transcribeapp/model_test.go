package transcribeapp

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

func TestToAppBatchTranscription_ItemWithoutJob(t *testing.T) {
	job := jobbus.Job{
		ID:        uuid.New(),
		Status:    jobbus.StatusCompleted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	res := mlclient.TranscriptionResult{
		Text:     "hello world",
		Language: "en",
	}

	outcomes := []jobbus.TranscribeOutcome{
		{Job: job, Result: res},
		{Err: errors.New("db: connection refused")},
	}

	batch := toAppBatchTranscription(outcomes)

	if got := batch.Items[0].JobID; got != job.ID.String() {
		t.Errorf("expected job id %s, got %q", job.ID, got)
	}
	if got := batch.Items[0].Text; got != res.Text {
		t.Errorf("expected text %q, got %q", res.Text, got)
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
