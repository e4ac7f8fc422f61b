package mlclient

// SynthesizeParams is the request body for the TTS predict endpoint.
type SynthesizeParams struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	VoiceID  string  `json:"voice_id,omitempty"`
	Emotion  string  `json:"emotion,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
}

// SynthesisResult is the TTS predict response. Duration is nil when the
// service could not measure the rendered audio.
type SynthesisResult struct {
	AudioPath string         `json:"audio_path"`
	Duration  *float64       `json:"duration"`
	Meta      map[string]any `json:"meta"`
	Status    string         `json:"status"`
}

// TranscribeParams carries the audio payload for the STT transcribe endpoint.
type TranscribeParams struct {
	Audio        []byte
	MimeType     string
	LanguageHint string
}

// Timestamp is a single word-level timing segment in a transcript.
type Timestamp struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// TranscriptionResult is the STT transcribe response.
type TranscriptionResult struct {
	Text       string         `json:"text"`
	Language   string         `json:"language"`
	Confidence float64        `json:"confidence"`
	Timestamps []Timestamp    `json:"timestamps"`
	Meta       map[string]any `json:"meta"`
	ModelUsed  string         `json:"modelUsed"`
	Status     string         `json:"status"`
}

// ServiceStatus is the health/reload response shared by both services.
type ServiceStatus struct {
	Status string           `json:"status"`
	Detail string           `json:"detail"`
	Models []map[string]any `json:"models"`
}
