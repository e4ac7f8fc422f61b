// Package mlclient provides a client to the speech inference services. The
// gateway treats these services as opaque collaborators: a non-success status
// in the body is handled exactly like a transport failure.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/voxgate/voxgate/foundation/logger"
	"github.com/voxgate/voxgate/foundation/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotHealthy is returned when a service reports a non-ok status.
var ErrNotHealthy = fmt.Errorf("service is not healthy")

// Config represents information required to construct a client.
type Config struct {
	Log     *logger.Logger
	TTSHost string
	STTHost string
	Timeout time.Duration
}

// Client provides access to the TTS and STT inference services.
type Client struct {
	log     *logger.Logger
	ttsHost string
	sttHost string
	http    *http.Client
	timeout time.Duration
}

// New constructs a client using the specified hosts. Every call carries the
// configured timeout on top of whatever deadline the caller already set.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		log:     cfg.Log,
		ttsHost: cfg.TTSHost,
		sttHost: cfg.STTHost,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// Synthesize asks the TTS service to render the specified text to audio.
func (c *Client) Synthesize(ctx context.Context, params SynthesizeParams) (SynthesisResult, error) {
	ctx, span := otel.AddSpan(ctx, "foundation.mlclient.synthesize")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(params)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ttsHost+"/ml/tts/predict", bytes.NewReader(body))
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.AddTraceToRequest(ctx, req)

	var result SynthesisResult
	if err := c.do(req, &result); err != nil {
		return SynthesisResult{}, err
	}

	if result.Status != "success" {
		return SynthesisResult{}, fmt.Errorf("tts returned status %q", result.Status)
	}

	return result, nil
}

// Transcribe asks the STT service to transcribe the specified audio bytes.
func (c *Client) Transcribe(ctx context.Context, params TranscribeParams) (TranscriptionResult, error) {
	ctx, span := otel.AddSpan(ctx, "foundation.mlclient.transcribe")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", fileName(params.MimeType))
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("create form file: %w", err)
	}

	if _, err := part.Write(params.Audio); err != nil {
		return TranscriptionResult{}, fmt.Errorf("write audio: %w", err)
	}

	if params.LanguageHint != "" {
		if err := mw.WriteField("language_hint", params.LanguageHint); err != nil {
			return TranscriptionResult{}, fmt.Errorf("write language hint: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return TranscriptionResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sttHost+"/ml/stt/transcribe", &body)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	otel.AddTraceToRequest(ctx, req)

	var result TranscriptionResult
	if err := c.do(req, &result); err != nil {
		return TranscriptionResult{}, err
	}

	if result.Status != "success" {
		return TranscriptionResult{}, fmt.Errorf("stt returned status %q", result.Status)
	}

	return result, nil
}

// TTSStatus returns the health report of the TTS service.
func (c *Client) TTSStatus(ctx context.Context) (ServiceStatus, error) {
	return c.status(ctx, c.ttsHost+"/ml/tts/health")
}

// STTStatus returns the health report of the STT service.
func (c *Client) STTStatus(ctx context.Context) (ServiceStatus, error) {
	return c.status(ctx, c.sttHost+"/ml/stt/health")
}

// TTSReload asks the TTS service to reload its models.
func (c *Client) TTSReload(ctx context.Context) (ServiceStatus, error) {
	return c.reload(ctx, c.ttsHost+"/ml/tts/reload")
}

// STTReload asks the STT service to reload its models.
func (c *Client) STTReload(ctx context.Context) (ServiceStatus, error) {
	return c.reload(ctx, c.sttHost+"/ml/stt/reload")
}

func (c *Client) status(ctx context.Context, url string) (ServiceStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServiceStatus{}, fmt.Errorf("create request: %w", err)
	}
	otel.AddTraceToRequest(ctx, req)

	var result ServiceStatus
	if err := c.do(req, &result); err != nil {
		return ServiceStatus{}, err
	}

	return result, nil
}

func (c *Client) reload(ctx context.Context, url string) (ServiceStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return ServiceStatus{}, fmt.Errorf("create request: %w", err)
	}
	otel.AddTraceToRequest(ctx, req)

	var result ServiceStatus
	if err := c.do(req, &result); err != nil {
		return ServiceStatus{}, err
	}

	if result.Status != "ok" {
		return ServiceStatus{}, fmt.Errorf("%w: %s", ErrNotHealthy, result.Detail)
	}

	return result, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service responded %d: %s", resp.StatusCode, truncate(data, 256))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func fileName(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return "audio.wav"
	case "audio/mpeg":
		return "audio.mp3"
	case "audio/ogg":
		return "audio.ogg"
	case "audio/flac":
		return "audio.flac"
	}

	return "audio.bin"
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	return string(data)
}
