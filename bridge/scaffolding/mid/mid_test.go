package mid_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrazmi/minimaltodo/bridge/scaffolding/mid"
	"github.com/jrazmi/minimaltodo/infrastructure/web"
	"github.com/jrazmi/minimaltodo/sdk/errs"
	"github.com/jrazmi/minimaltodo/sdk/logger"
	"github.com/jrazmi/minimaltodo/sdk/telemetry"
)

func newHandler() *web.WebHandler {
	log := logger.NewDiscard()
	tel := telemetry.NewTelemetry()
	return web.NewWebHandler(
		web.WithTelemetry(tel),
		web.WithGlobalMiddleware(mid.Logger(log, tel), mid.Errors(log), mid.Panics()),
	)
}

func TestErrorsEncodesAppError(t *testing.T) {
	h := newHandler()
	h.GET("/bad", func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.Newf(errs.InvalidArgument, "title is required")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "invalid_argument" || body.Message != "title is required" {
		t.Errorf("body = %+v", body)
	}
}

func TestPanicsHidesDetail(t *testing.T) {
	h := newHandler()
	h.GET("/panic", func(ctx context.Context, r *http.Request) web.Encoder {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Message != "Internal Server Error" {
		t.Errorf("panic detail leaked: %q", body.Message)
	}
}

type plainErr struct{}

func (plainErr) Error() string                   { return "db password is hunter2" }
func (plainErr) Encode() ([]byte, string, error) { return []byte("{}"), "application/json", nil }

func TestErrorsMasksUnknownErrors(t *testing.T) {
	h := newHandler()
	h.GET("/plain", func(ctx context.Context, r *http.Request) web.Encoder {
		return plainErr{}
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got == "" || !json.Valid([]byte(got)) {
		t.Fatalf("body = %q", got)
	}
	var body struct {
		Message string `json:"message"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Message != "Internal Server Error" {
		t.Errorf("message = %q", body.Message)
	}
}
