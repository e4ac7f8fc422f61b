package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			err := checkIsError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.Errorf(errs.Internal, "internal server error")
			}

			log.Error(ctx, "handled error during request",
				"err", err.Error(),
				"source_err_file", appErr.FileName,
				"source_err_func", appErr.FuncName)

			// The message behind this code must never reach the client.
			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Errorf(errs.Internal, "internal server error")
			}

			return appErr
		}

		return h
	}

	return m
}
