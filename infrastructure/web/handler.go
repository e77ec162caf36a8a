// Package web is a small layer over net/http: handlers return an Encoder
// instead of writing the response themselves, and middleware wraps handlers.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/jrazmi/minimaltodo/sdk/environment"
)

// Encoder defines behavior that can encode a data model and provide
// the content type for that encoding.
type Encoder interface {
	Encode() (data []byte, contentType string, err error)
}

// HandlerFunc represents a function that handles a http request and returns something to encode
type HandlerFunc func(ctx context.Context, r *http.Request) Encoder

// Middleware wraps a HandlerFunc
type Middleware func(HandlerFunc) HandlerFunc

// Telemetry stamps each request context with a trace id.
type Telemetry interface {
	SetTraceID(ctx context.Context) context.Context
	GetTraceID(ctx context.Context) string
}

// WebHandler routes requests through the global middleware to handlers.
type WebHandler struct {
	mux            *http.ServeMux
	log            *slog.Logger
	telemetry      Telemetry
	corsOrigins    []string
	defaultHeaders http.Header
	middleware     []Middleware
}

// HandlerOptions is the exportable configuration struct
type HandlerOptions struct {
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*" separator:","`
}

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	HandlerOptions
	log            *slog.Logger
	telemetry      Telemetry
	defaultHeaders http.Header
	middleware     []Middleware
}

// WithLogging sets the logger used for response write failures.
func WithLogging(log *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.log = log
	}
}

// WithTelemetry sets the telemetry provider
func WithTelemetry(tel Telemetry) HandlerOption {
	return func(o *handlerOptions) {
		o.telemetry = tel
	}
}

// WithCORS replaces the allowed CORS origins. "*" allows any origin.
func WithCORS(origins []string) HandlerOption {
	return func(o *handlerOptions) {
		o.CORSOrigins = origins
	}
}

// WithDefaultHeaders sets headers written on every response.
func WithDefaultHeaders(headers map[string]string) HandlerOption {
	return func(o *handlerOptions) {
		for k, v := range headers {
			o.defaultHeaders.Set(k, v)
		}
	}
}

// WithGlobalMiddleware appends middleware run for every route, in order.
func WithGlobalMiddleware(middleware ...Middleware) HandlerOption {
	return func(o *handlerOptions) {
		o.middleware = append(o.middleware, middleware...)
	}
}

// NewWebHandlerFromEnv creates a new WebHandler from environment variables
func NewWebHandlerFromEnv(prefix string, opts ...HandlerOption) (*WebHandler, error) {
	var cfg HandlerOptions
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing webhandler config: %w", err)
	}
	return newWebHandler(cfg, opts...), nil
}

// NewWebHandler creates a WebHandler without CORS unless WithCORS is given.
func NewWebHandler(opts ...HandlerOption) *WebHandler {
	return newWebHandler(HandlerOptions{}, opts...)
}

func newWebHandler(cfg HandlerOptions, opts ...HandlerOption) *WebHandler {
	o := &handlerOptions{
		HandlerOptions: cfg,
		defaultHeaders: http.Header{},
	}
	for _, opt := range opts {
		opt(o)
	}

	wh := &WebHandler{
		mux:            http.NewServeMux(),
		log:            o.log,
		telemetry:      o.telemetry,
		corsOrigins:    o.CORSOrigins,
		defaultHeaders: o.defaultHeaders,
		middleware:     o.middleware,
	}

	// CORS runs ahead of logging and error handling, and preflight
	// requests are answered for every path.
	if len(wh.corsOrigins) > 0 {
		wh.middleware = append([]Middleware{cors(wh.corsOrigins)}, wh.middleware...)
		wh.mux.HandleFunc("OPTIONS /", wh.adapt(wrap(func(context.Context, *http.Request) Encoder {
			return nil
		}, wh.middleware...)))
	}
	return wh
}

// CORSOrigins returns the allowed origins.
func (wh *WebHandler) CORSOrigins() []string {
	return wh.corsOrigins
}

// Handle registers handler for method and path behind the global middleware
// and then the given route middleware.
func (wh *WebHandler) Handle(method, path string, handler HandlerFunc, middleware ...Middleware) {
	chain := wrap(wrap(handler, middleware...), wh.middleware...)
	wh.mux.HandleFunc(strings.ToUpper(method)+" "+path, wh.adapt(chain))
}

func (wh *WebHandler) adapt(handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if wh.telemetry != nil {
			ctx = wh.telemetry.SetTraceID(ctx)
		}
		ctx = setWriter(ctx, w)
		maps.Copy(w.Header(), wh.defaultHeaders)

		if err := Respond(ctx, w, handler(ctx, r)); err != nil && wh.log != nil {
			wh.log.ErrorContext(ctx, "respond error", "error", err)
		}
	}
}

func (wh *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wh.mux.ServeHTTP(w, r)
}
