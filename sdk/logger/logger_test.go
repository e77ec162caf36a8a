package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewDefault_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(WithOutput(&buf), WithService("todo"))

	log.Info("task added", "task_id", "abc")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected json record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "task added" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["service"] != "todo" {
		t.Errorf("service = %v", rec["service"])
	}
	if rec["task_id"] != "abc" {
		t.Errorf("task_id = %v", rec["task_id"])
	}
}

func TestNewDefault_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(WithOutput(&buf), WithLevel("WARN"), WithFormat("text"))

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("TODO_LOG_LEVEL", "DEBUG")
	t.Setenv("TODO_LOG_FORMAT", "text")

	var buf bytes.Buffer
	log, err := NewFromEnv("TODO", WithOutput(&buf))
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	log.Debug("debug visible")
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Errorf("expected text debug record, got %q", buf.String())
	}
}
