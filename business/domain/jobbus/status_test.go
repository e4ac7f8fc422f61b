package jobbus_test

import (
	"testing"

	"github.com/voxgate/voxgate/business/domain/jobbus"
)

func TestStatusTerminal(t *testing.T) {
	if jobbus.StatusQueued.Terminal() {
		t.Error("QUEUED is not terminal")
	}
	if jobbus.StatusProcessing.Terminal() {
		t.Error("PROCESSING is not terminal")
	}
	if !jobbus.StatusCompleted.Terminal() {
		t.Error("COMPLETED is terminal")
	}
	if !jobbus.StatusFailed.Terminal() {
		t.Error("FAILED is terminal")
	}
}

func TestParseStatus(t *testing.T) {
	s, err := jobbus.ParseStatus("COMPLETED")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !s.Equal(jobbus.StatusCompleted) {
		t.Errorf("expected COMPLETED, got %s", s)
	}

	if _, err := jobbus.ParseStatus("DONE"); err == nil {
		t.Error("unknown status should fail to parse")
	}
}
