package telemetry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jrazmi/minimaltodo/sdk/telemetry"
)

func TestTraceID(t *testing.T) {
	tel := telemetry.NewTelemetry()
	ctx := context.Background()

	if got := tel.GetTraceID(ctx); got != telemetry.NoTrace {
		t.Errorf("empty context trace = %q", got)
	}

	ctx = tel.SetTraceID(ctx)
	id := tel.GetTraceID(ctx)
	if !strings.HasPrefix(id, "trc_") {
		t.Fatalf("trace id = %q", id)
	}
	if again := tel.GetTraceID(tel.SetTraceID(ctx)); again != id {
		t.Errorf("trace id replaced: %q then %q", id, again)
	}

	other := tel.GetTraceID(tel.SetTraceID(context.Background()))
	if other == id {
		t.Error("two requests share a trace id")
	}
}
