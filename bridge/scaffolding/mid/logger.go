package mid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrazmi/minimaltodo/infrastructure/web"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// Logger writes request start and completion lines tagged with the trace id.
func Logger(log *logger.Logger, tel web.Telemetry) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			p := r.URL.Path
			if r.URL.RawQuery != "" {
				p = fmt.Sprintf("%s?%s", p, r.URL.RawQuery)
			}
			traceID := tel.GetTraceID(ctx)

			log.InfoContext(ctx, "request started",
				"trace_id", traceID,
				"method", r.Method,
				"path", p,
				"remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)

			log.InfoContext(ctx, "request completed",
				"trace_id", traceID,
				"method", r.Method,
				"path", p,
				"status", statusOf(resp),
				"since", time.Since(now).String())

			return resp
		}
	}
}
