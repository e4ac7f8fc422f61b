package transcribeapp

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

// Timestamp is one word-level timing segment in a transcript.
type Timestamp struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Transcription is the outcome of one recognition job.
type Transcription struct {
	JobID      string      `json:"jobId,omitempty"`
	Status     string      `json:"status"`
	Text       string      `json:"text,omitempty"`
	Language   string      `json:"language,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Timestamps []Timestamp `json:"timestamps,omitempty"`
	ModelUsed  string      `json:"modelUsed,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Encode implements the web.Encoder interface.
func (t Transcription) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

func toAppTranscription(job jobbus.Job, res mlclient.TranscriptionResult) Transcription {
	stamps := make([]Timestamp, len(res.Timestamps))
	for i, ts := range res.Timestamps {
		stamps[i] = Timestamp{Start: ts.Start, End: ts.End, Word: ts.Word}
	}

	return Transcription{
		JobID:      job.ID.String(),
		Status:     job.Status.String(),
		Text:       res.Text,
		Language:   res.Language,
		Confidence: res.Confidence,
		Timestamps: stamps,
		ModelUsed:  res.ModelUsed,
	}
}

// BatchTranscription carries per-item outcomes of a batch submission.
type BatchTranscription struct {
	Items []Transcription `json:"items"`
}

// Encode implements the web.Encoder interface.
func (b BatchTranscription) Encode() ([]byte, string, error) {
	data, err := json.Marshal(b)
	return data, "application/json", err
}

func toAppBatchTranscription(outcomes []jobbus.TranscribeOutcome) BatchTranscription {
	items := make([]Transcription, len(outcomes))

	for i, out := range outcomes {
		items[i] = toAppTranscription(out.Job, out.Result)
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

	return BatchTranscription{Items: items}
}
