package web_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrazmi/minimaltodo/infrastructure/web"
)

type input struct {
	Title string `json:"title"`
}

func (i input) Validate() error {
	if i.Title == "" {
		return errors.New("title required")
	}
	return nil
}

func TestGroupRoutingAndMiddleware(t *testing.T) {
	var order []string
	tag := func(name string) web.Middleware {
		return func(next web.HandlerFunc) web.HandlerFunc {
			return func(ctx context.Context, r *http.Request) web.Encoder {
				order = append(order, name)
				return next(ctx, r)
			}
		}
	}

	h := web.NewWebHandler(web.WithGlobalMiddleware(tag("global")))
	api := h.Group("/api/v1/", tag("group"))
	api.PATCH("/tasks/{task_id}", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponseWithStatus(map[string]string{"id": web.Param(r, "task_id")}, http.StatusAccepted)
	}, tag("route"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/abc", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"id":"abc"}` {
		t.Errorf("body = %s", got)
	}
	if strings.Join(order, ",") != "global,group,route" {
		t.Errorf("middleware order = %v", order)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/abc", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d", rec.Code)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"title":"Buy milk"}`, false},
		{"empty", ``, true},
		{"bad json", `{"title":`, true},
		{"invalid", `{"title":""}`, true},
		{"unknown field", `{"title":"a","priority":1}`, true},
		{"trailing", `{"title":"a"} {"title":"b"}`, true},
		{"whitespace only", "  \n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var in input
			err := web.Decode(r, &in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := web.NewWebHandler(web.WithCORS([]string{"http://localhost:5173"}))
	h.Handle(http.MethodOptions, "/tasks", func(ctx context.Context, r *http.Request) web.Encoder {
		t.Error("preflight reached handler")
		return nil
	})

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Errorf("allow methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRespondNoContentAndBytes(t *testing.T) {
	h := web.NewWebHandler(web.WithDefaultHeaders(map[string]string{"X-App": "todo"}))
	h.DELETE("/nothing", func(ctx context.Context, r *http.Request) web.Encoder {
		return nil
	})
	h.GET("/doc", func(ctx context.Context, r *http.Request) web.Encoder {
		web.GetWriter(ctx).Header().Set("Content-Disposition", `attachment; filename="x.pdf"`)
		return web.NewBytesResponse([]byte("%PDF-1.3"), "application/pdf")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/nothing", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("nil response status = %d", rec.Code)
	}
	if rec.Header().Get("X-App") != "todo" {
		t.Error("default header missing")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doc", nil))
	if rec.Header().Get("Content-Type") != "application/pdf" || rec.Body.String() != "%PDF-1.3" {
		t.Errorf("bytes response = %q %q", rec.Header().Get("Content-Type"), rec.Body.String())
	}
	if rec.Header().Get("Content-Disposition") == "" {
		t.Error("handler header lost")
	}
}

func TestCORSPreflightAnyPath(t *testing.T) {
	h := web.NewWebHandler(web.WithCORS([]string{"*"}))
	h.DELETE("/api/v1/tasks/{task_id}", func(ctx context.Context, r *http.Request) web.Encoder {
		return nil
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks/abc", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := web.NewWebHandler(web.WithCORS([]string{"http://localhost:5173"}))
	h.GET("/tasks", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse([]string{})
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow origin = %q, want none", got)
	}
}

func TestServerServeListener(t *testing.T) {
	h := web.NewWebHandler()
	h.GET("/ping", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse("pong")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv, err := web.NewServerFromEnv("WEBTEST", web.WithHandler(h), web.WithShutdownTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(body)) != `"pong"` {
		t.Errorf("body = %s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
