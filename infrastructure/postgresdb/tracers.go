package postgresdb

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// MultiQueryTracer fans trace callbacks out to several tracers.
// https://github.com/jackc/pgx/discussions/1677#discussioncomment-8815982
type MultiQueryTracer struct {
	Tracers []pgx.QueryTracer
}

func NewMultiQueryTracer(tracers ...pgx.QueryTracer) *MultiQueryTracer {
	return &MultiQueryTracer{Tracers: tracers}
}

func (m *MultiQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range m.Tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (m *MultiQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range m.Tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// LoggingQueryTracer logs statements at debug level and failures at error
// level, with the elapsed time of each query.
type LoggingQueryTracer struct {
	logger *slog.Logger
}

func NewLoggingQueryTracer(logger *slog.Logger) *LoggingQueryTracer {
	return &LoggingQueryTracer{logger: logger}
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

var (
	collapseSpaces = regexp.MustCompile(`\s+`)
	openParen      = regexp.MustCompile(`\(\s+`)
	closeParen     = regexp.MustCompile(`\s+\)`)
)

// compactSQL folds a multi-line statement onto one line.
func compactSQL(sql string) string {
	out := collapseSpaces.ReplaceAllString(sql, " ")
	out = openParen.ReplaceAllString(out, "(")
	out = closeParen.ReplaceAllString(out, ")")
	return strings.TrimSpace(out)
}

func (l *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	sql := compactSQL(data.SQL)
	l.logger.DebugContext(ctx, "query start", slog.String("sql", sql), slog.Int("args", len(data.Args)))
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: sql, at: time.Now()})
}

func (l *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	attrs := []any{slog.String("command_tag", data.CommandTag.String())}
	if start, ok := ctx.Value(queryStartKey{}).(queryStart); ok {
		attrs = append(attrs, slog.Duration("elapsed", time.Since(start.at)))
		if data.Err != nil {
			attrs = append(attrs, slog.String("sql", start.sql))
		}
	}

	if data.Err != nil {
		attrs = append(attrs, slog.String("error", data.Err.Error()))
		l.logger.ErrorContext(ctx, "query failed", attrs...)
		return
	}
	l.logger.DebugContext(ctx, "query end", attrs...)
}
