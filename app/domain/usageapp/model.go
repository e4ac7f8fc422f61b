package usageapp

import (
	"encoding/json"
	"time"

	"github.com/voxgate/voxgate/business/domain/usagebus"
)

// Record represents one billable usage fact.
type Record struct {
	ID          string            `json:"id"`
	KeyID       string            `json:"keyId,omitempty"`
	JobID       string            `json:"jobId"`
	Kind        string            `json:"kind"`
	Units       float64           `json:"units"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	DateCreated string            `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (r Record) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

func toAppRecord(bus usagebus.Record) Record {
	rec := Record{
		ID:          bus.ID.String(),
		JobID:       bus.JobID.String(),
		Kind:        bus.Kind.String(),
		Units:       bus.Units,
		Metadata:    bus.Metadata,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}

	if bus.KeyID != nil {
		rec.KeyID = bus.KeyID.String()
	}

	return rec
}

func toAppRecords(recs []usagebus.Record) []Record {
	app := make([]Record, len(recs))
	for i, rec := range recs {
		app[i] = toAppRecord(rec)
	}
	return app
}

// Summary totals the billable units per usage kind.
type Summary struct {
	SynthesisCharacters float64 `json:"synthesisCharacters"`
	RecognitionSeconds  float64 `json:"recognitionSeconds"`
}

// Encode implements the web.Encoder interface.
func (s Summary) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}
