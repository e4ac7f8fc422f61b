package jobbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/types/kind"
)

// Job represents one unit of dispatched speech work. A job is created once,
// mutated only by this package, and never deleted.
type Job struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	UserID       *uuid.UUID
	KeyID        *uuid.UUID
	Kind         kind.Kind
	Status       Status
	InputRef     string
	ResultRef    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// Submitter identifies who a job is dispatched on behalf of. Exactly one of
// UserID and KeyID is set for authenticated requests.
type Submitter struct {
	TenantID uuid.UUID
	UserID   *uuid.UUID
	KeyID    *uuid.UUID
}

// SynthesisRequest carries the input for one synthesis job.
type SynthesisRequest struct {
	Text     string
	Language string
	VoiceID  string
	Emotion  string
	Speed    float64
}

// RecognitionRequest carries the input for one recognition job.
type RecognitionRequest struct {
	Audio        []byte
	MimeType     string
	LanguageHint string
}
