package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jrazmi/minimaltodo/sdk/environment"
)

// WebServer wraps http.Server with its shutdown policy.
type WebServer struct {
	*http.Server
	Config ServerConfig
}

// ServerConfig holds web server configuration (exportable)
type ServerConfig struct {
	Port            string        `env:"PORT" default:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"20s"`
}

type serverOptions struct {
	handler  http.Handler
	errorLog *log.Logger
	config   ServerConfig
}

// ServerOption overrides a server setting after the config is read.
type ServerOption func(*serverOptions)

func WithHandler(handler http.Handler) ServerOption {
	return func(o *serverOptions) {
		o.handler = handler
	}
}

// WithErrorLog routes http.Server's internal errors to errorLog.
func WithErrorLog(errorLog *log.Logger) ServerOption {
	return func(o *serverOptions) {
		o.errorLog = errorLog
	}
}

// WithPort sets the listen address, such as ":8080" or "127.0.0.1:0".
func WithPort(port string) ServerOption {
	return func(o *serverOptions) {
		o.config.Port = port
	}
}

func WithShutdownTimeout(timeout time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.config.ShutdownTimeout = timeout
	}
}

// NewServerFromEnv creates a new WebServer from environment variables
func NewServerFromEnv(prefix string, opts ...ServerOption) (*WebServer, error) {
	var cfg ServerConfig
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing webserver config: %w", err)
	}
	return newWebServer(cfg, opts...), nil
}

func newWebServer(cfg ServerConfig, opts ...ServerOption) *WebServer {
	o := &serverOptions{config: cfg}
	for _, opt := range opts {
		opt(o)
	}

	return &WebServer{
		Server: &http.Server{
			Addr:         o.config.Port,
			Handler:      o.handler,
			ReadTimeout:  o.config.ReadTimeout,
			WriteTimeout: o.config.WriteTimeout,
			IdleTimeout:  o.config.IdleTimeout,
			ErrorLog:     o.errorLog,
		},
		Config: o.config,
	}
}

// Serve listens on the configured address and serves until ctx is done,
// then shuts down gracefully within ShutdownTimeout.
func (s *WebServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *WebServer) ServeListener(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			s.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
