// Package transcribeapp maintains the recognition handler set. Audio arrives
// as multipart form data rather than JSON.
package transcribeapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/sdk/web"
)

const (
	// maxUploadBytes bounds one audio upload.
	maxUploadBytes = 30 << 20

	// maxBatchItems caps one batch submission.
	maxBatchItems = 10
)

type app struct {
	jobBus *jobbus.Core
}

// newApp constructs a transcribe app API for use.
func newApp(jobBus *jobbus.Core) *app {
	return &app{
		jobBus: jobBus,
	}
}

// transcribe dispatches one recognition job and returns its outcome.
func (a *app) transcribe(ctx context.Context, r *http.Request) web.Encoder {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing form: %w", err))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return errs.New(errs.InvalidArgument, errors.New("missing form file \"file\""))
	}
	defer file.Close()

	req, err := toBusRecognition(file, header, r.FormValue("language_hint"))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	sub, err := submitter(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	job, res, err := a.jobBus.Transcribe(ctx, sub, req)
	if err != nil {
		return recognitionError(err)
	}

	return toAppTranscription(job, res)
}

// transcribeBatch accepts several audio files under the "files" form field
// and reports per-item outcomes.
func (a *app) transcribeBatch(ctx context.Context, r *http.Request) web.Encoder {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing form: %w", err))
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return errs.New(errs.InvalidArgument, errors.New("missing form files \"files\""))
	}
	if len(headers) > maxBatchItems {
		return errs.Errorf(errs.InvalidArgument, "batch exceeds %d items", maxBatchItems)
	}

	hint := r.FormValue("language_hint")

	reqs := make([]jobbus.RecognitionRequest, len(headers))
	for i, header := range headers {
		file, err := header.Open()
		if err != nil {
			return errs.Errorf(errs.InvalidArgument, "opening file %q: %s", header.Filename, err)
		}

		reqs[i], err = toBusRecognition(file, header, hint)
		file.Close()
		if err != nil {
			return errs.New(errs.InvalidArgument, err)
		}
	}

	sub, err := submitter(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	outcomes := a.jobBus.TranscribeBatch(ctx, sub, reqs)

	return toAppBatchTranscription(outcomes)
}

// =============================================================================

func toBusRecognition(file multipart.File, header *multipart.FileHeader, hint string) (jobbus.RecognitionRequest, error) {
	audio, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return jobbus.RecognitionRequest{}, fmt.Errorf("reading file %q: %w", header.Filename, err)
	}

	if len(audio) == 0 {
		return jobbus.RecognitionRequest{}, fmt.Errorf("file %q is empty", header.Filename)
	}
	if len(audio) > maxUploadBytes {
		return jobbus.RecognitionRequest{}, fmt.Errorf("file %q exceeds the upload limit", header.Filename)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return jobbus.RecognitionRequest{
		Audio:        audio,
		MimeType:     mimeType,
		LanguageHint: hint,
	}, nil
}

func submitter(ctx context.Context) (jobbus.Submitter, error) {
	id, err := mid.GetIdentity(ctx)
	if err != nil {
		return jobbus.Submitter{}, err
	}

	return jobbus.Submitter{
		TenantID: id.TenantID,
		UserID:   id.UserID,
		KeyID:    id.KeyID,
	}, nil
}

func recognitionError(err error) web.Encoder {
	if errors.Is(err, jobbus.ErrProviderFailure) {
		return errs.New(errs.Unavailable, errors.New("transcription could not be completed"))
	}

	return errs.Errorf(errs.InternalOnlyLog, "transcribe: %s", err)
}
