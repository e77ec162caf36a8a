// Package telemetry attaches a trace id to each request context.
package telemetry

import (
	"context"

	"github.com/jrazmi/minimaltodo/sdk/cryptids"
)

type traceIDKey struct{}

// NoTrace is returned when a context carries no trace id.
const NoTrace = "--------NOTRACE--------"

// Telemetry issues trace ids. The zero value is ready to use.
type Telemetry struct {
	prefix string
}

// NewTelemetry returns a Telemetry issuing ids of the form trc_<random>.
func NewTelemetry() Telemetry {
	return Telemetry{prefix: "trc"}
}

// SetTraceID stores a fresh trace id on ctx, keeping one already present.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(traceIDKey{}).(string); ok {
		return ctx
	}

	id, err := cryptids.GenerateID()
	if t.prefix != "" {
		id, err = cryptids.GeneratePrefixedID(t.prefix)
	}
	if err != nil {
		id = NoTrace
	}
	return context.WithValue(ctx, traceIDKey{}, id)
}

// GetTraceID returns the trace id on ctx, or NoTrace.
func (t Telemetry) GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return NoTrace
}
