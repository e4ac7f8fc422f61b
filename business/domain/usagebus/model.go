package usagebus

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/types/kind"
)

// Record represents one immutable billable usage fact. Units are characters
// for synthesis and seconds for recognition.
type Record struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	KeyID     *uuid.UUID
	JobID     uuid.UUID
	Kind      kind.Kind
	Units     float64
	Metadata  map[string]string
	CreatedAt time.Time
}

// NewRecord contains information needed to append a usage record.
type NewRecord struct {
	TenantID uuid.UUID
	KeyID    *uuid.UUID
	JobID    uuid.UUID
	Kind     kind.Kind
	Units    float64
	Metadata map[string]string
}
