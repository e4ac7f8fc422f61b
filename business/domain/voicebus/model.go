package voicebus

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/types/name"
)

// Voice represents a synthesis voice profile. TenantID is nil for stock
// voices shipped with the inference backend.
type Voice struct {
	ID        uuid.UUID
	TenantID  *uuid.UUID
	Name      name.Name
	Language  string
	Gender    string
	Cloned    bool
	SampleRef string
	CreatedAt time.Time
}

// NewVoice contains information needed to register a cloned voice.
type NewVoice struct {
	TenantID  uuid.UUID
	Name      name.Name
	Language  string
	Gender    string
	SampleRef string
}
