package speechapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

// =============================================================================
// Synthesis (Input)
// =============================================================================

// SynthesizeRequest defines the data needed to submit a synthesis job.
type SynthesizeRequest struct {
	Text     string  `json:"text" validate:"required,max=5000"`
	Language string  `json:"language"`
	VoiceID  string  `json:"voice_id"`
	Emotion  string  `json:"emotion"`
	Speed    float64 `json:"speed" validate:"omitempty,gt=0,lte=3"`
}

// Decode implements the web.Decoder interface.
func (app *SynthesizeRequest) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app SynthesizeRequest) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusSynthesis(app SynthesizeRequest) jobbus.SynthesisRequest {
	return jobbus.SynthesisRequest{
		Text:     app.Text,
		Language: app.Language,
		VoiceID:  app.VoiceID,
		Emotion:  app.Emotion,
		Speed:    app.Speed,
	}
}

// BatchSynthesizeRequest defines the data needed to submit a synthesis batch.
type BatchSynthesizeRequest struct {
	Items []SynthesizeRequest `json:"items" validate:"required,min=1,dive"`
}

// Decode implements the web.Decoder interface.
func (app *BatchSynthesizeRequest) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app BatchSynthesizeRequest) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// =============================================================================
// Synthesis (Output)
// =============================================================================

// Synthesis is the outcome of one synthesis job.
type Synthesis struct {
	JobID     string   `json:"jobId,omitempty"`
	Status    string   `json:"status"`
	AudioPath string   `json:"audioPath,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Encode implements the web.Encoder interface.
func (s Synthesis) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func toAppSynthesis(job jobbus.Job, res mlclient.SynthesisResult) Synthesis {
	return Synthesis{
		JobID:     job.ID.String(),
		Status:    job.Status.String(),
		AudioPath: res.AudioPath,
		Duration:  res.Duration,
	}
}

// BatchSynthesis carries per-item outcomes of a batch submission.
type BatchSynthesis struct {
	Items []Synthesis `json:"items"`
}

// Encode implements the web.Encoder interface.
func (b BatchSynthesis) Encode() ([]byte, string, error) {
	data, err := json.Marshal(b)
	return data, "application/json", err
}

func toAppBatchSynthesis(outcomes []jobbus.SynthesizeOutcome) BatchSynthesis {
	items := make([]Synthesis, len(outcomes))

	for i, out := range outcomes {
		items[i] = toAppSynthesis(out.Job, out.Result)
		if out.Err != nil {
			items[i].Error = out.Job.ErrorMessage
		}

		// The item failed before a job existed. There is no id to report
		// and no recorded message to fall back on.
		if out.Err != nil && out.Job.ID == uuid.Nil {
			items[i].JobID = ""
			items[i].Status = jobbus.StatusFailed.String()
			items[i].Error = "request could not be accepted"
		}
	}

	return BatchSynthesis{Items: items}
}

// =============================================================================
// Voices
// =============================================================================

// Voice represents information about a synthesis voice profile.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender,omitempty"`
	Cloned      bool   `json:"cloned"`
	DateCreated string `json:"dateCreated"`
}

// Encode implements the web.Encoder interface.
func (v Voice) Encode() ([]byte, string, error) {
	data, err := json.Marshal(v)
	return data, "application/json", err
}

func toAppVoice(bus voicebus.Voice) Voice {
	return Voice{
		ID:          bus.ID.String(),
		Name:        bus.Name.String(),
		Language:    bus.Language,
		Gender:      bus.Gender,
		Cloned:      bus.Cloned,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}
}

func toAppVoices(voices []voicebus.Voice) []Voice {
	app := make([]Voice, len(voices))
	for i, v := range voices {
		app[i] = toAppVoice(v)
	}
	return app
}

// NewVoiceClone defines the data needed to register a cloned voice.
type NewVoiceClone struct {
	Name      string `json:"name" validate:"required"`
	Language  string `json:"language" validate:"required"`
	Gender    string `json:"gender"`
	SampleRef string `json:"sampleRef" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *NewVoiceClone) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewVoiceClone) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewVoice(tenantID uuid.UUID, app NewVoiceClone) (voicebus.NewVoice, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return voicebus.NewVoice{}, fmt.Errorf("parse name: %w", err)
	}

	return voicebus.NewVoice{
		TenantID:  tenantID,
		Name:      nme,
		Language:  app.Language,
		Gender:    app.Gender,
		SampleRef: app.SampleRef,
	}, nil
}
