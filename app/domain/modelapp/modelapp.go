// Package modelapp maintains handlers that surface inference backend model
// state and trigger model reloads.
package modelapp

import (
	"context"
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/foundation/mlclient"
)

type app struct {
	ml *mlclient.Client
}

// newApp constructs a model app API for use.
func newApp(ml *mlclient.Client) *app {
	return &app{
		ml: ml,
	}
}

// status reports the health and loaded models of both inference services.
// One service being down does not hide the other's state.
func (a *app) status(ctx context.Context, r *http.Request) web.Encoder {
	var resp ModelStatus

	tts, err := a.ml.TTSStatus(ctx)
	resp.TTS = toAppService(tts, err)

	stt, err := a.ml.STTStatus(ctx)
	resp.STT = toAppService(stt, err)

	return resp
}

// reload asks both inference services to reload their models.
func (a *app) reload(ctx context.Context, r *http.Request) web.Encoder {
	var resp ModelStatus

	tts, err := a.ml.TTSReload(ctx)
	if err != nil {
		return errs.Errorf(errs.Unavailable, "tts reload: %s", err)
	}
	resp.TTS = toAppService(tts, nil)

	stt, err := a.ml.STTReload(ctx)
	if err != nil {
		return errs.Errorf(errs.Unavailable, "stt reload: %s", err)
	}
	resp.STT = toAppService(stt, nil)

	return resp
}
