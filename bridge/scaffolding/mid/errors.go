package mid

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/jrazmi/minimaltodo/infrastructure/web"
	"github.com/jrazmi/minimaltodo/sdk/errs"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// Errors turns any error returned by the chain into an errs.Error. Client
// errors are logged at warn level and server errors at error level; errors
// that are not errs.Error, or are marked InternalOnlyLog, reach the client
// only as a generic internal error.
func Errors(log *logger.Logger) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.New(errs.InternalOnlyLog, err)
			}

			level := slog.LevelWarn
			if appErr.HTTPStatus() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(ctx, level, "handled error during request",
				"err", err,
				"code", appErr.Code.String(),
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			if appErr.Code == errs.InternalOnlyLog {
				return errs.Newf(errs.Internal, "Internal Server Error")
			}
			return appErr
		}
	}
}
