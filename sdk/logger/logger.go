// Package logger wraps log/slog with environment driven configuration.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jrazmi/minimaltodo/sdk/environment"
)

// Level aliases so callers need not import log/slog for common levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

// options holds all configurable settings for the logger.
type options struct {
	level      slog.Level
	output     io.Writer
	addSource  bool
	format     string // "json" or "text"
	timeFormat string // "RFC3339", "RFC3339Nano", "Unix", "UnixMilli", or a layout
	attrs      []any
}

// Options is the exportable logger configuration.
type Options struct {
	Level      string `json:"level" env:"LOG_LEVEL" default:"INFO"`
	Output     string `json:"output" env:"LOG_OUTPUT" default:"STDOUT"`
	Format     string `json:"format" env:"LOG_FORMAT" default:"json"`
	TimeFormat string `json:"time_format" env:"LOG_TIME_FORMAT" default:"RFC3339"`
	AddSource  bool   `json:"add_source" env:"LOG_ADD_SOURCE" default:"false"`
}

// Option overrides a setting after the Options have been applied.
type Option func(*options)

// WithLevel sets the minimum level from its string name.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

// WithOutput sends records to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithFormat selects the "json" or "text" handler.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithService adds a service attribute to every record.
func WithService(name string) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, "service", name)
	}
}

// NewDefault builds a JSON logger at INFO on stderr.
func NewDefault(opts ...Option) *Logger {
	options := Options{
		Level:      "INFO",
		Output:     "STDERR",
		Format:     "json",
		TimeFormat: time.RFC3339,
	}
	return newLogger(options, opts...)
}

// NewDiscard builds a logger that drops everything. Useful in tests.
func NewDiscard() *Logger {
	return newLogger(Options{Level: "ERROR", Output: "DISCARD"})
}

// NewStdLogger adapts the logger for APIs that still want a *log.Logger,
// such as http.Server.ErrorLog.
func NewStdLogger(logger *Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Logger.Handler(), level)
}

// NewFromEnv reads Options from the environment using prefix.
func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var options Options
	if err := environment.ParseEnvTags(prefix, &options); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return newLogger(options, opts...), nil
}

func newLogger(cfg Options, opts ...Option) *Logger {
	options := &options{
		level:      parseLevel(cfg.Level),
		output:     parseOutput(cfg.Output),
		addSource:  cfg.AddSource,
		timeFormat: cfg.TimeFormat,
		format:     cfg.Format,
	}
	for _, opt := range opts {
		opt(options)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     options.level,
		AddSource: options.addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey || options.timeFormat == "" || len(groups) > 0 {
				return a
			}
			t := a.Value.Time()
			switch options.timeFormat {
			case "Unix":
				return slog.Int64(slog.TimeKey, t.Unix())
			case "UnixMilli":
				return slog.Int64(slog.TimeKey, t.UnixMilli())
			case "RFC3339":
				return slog.String(slog.TimeKey, t.Format(time.RFC3339))
			case "RFC3339Nano":
				return slog.String(slog.TimeKey, t.Format(time.RFC3339Nano))
			default:
				return slog.String(slog.TimeKey, t.Format(options.timeFormat))
			}
		},
	}

	var handler slog.Handler
	switch options.format {
	case "text":
		handler = slog.NewTextHandler(options.output, handlerOpts)
	default:
		handler = slog.NewJSONHandler(options.output, handlerOpts)
	}

	l := slog.New(handler)
	if len(options.attrs) > 0 {
		l = l.With(options.attrs...)
	}
	return &Logger{Logger: l}
}

// DebugContextf logs a formatted debug message.
func (l *Logger) DebugContextf(ctx context.Context, format string, args ...any) {
	l.DebugContext(ctx, fmt.Sprintf(format, args...))
}

// InfoContextf logs a formatted info message.
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContextf logs a formatted warning.
func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

// ErrorContextf logs a formatted error.
func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}
