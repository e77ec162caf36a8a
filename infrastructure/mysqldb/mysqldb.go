// Package mysqldb opens MySQL connections through database/sql and the
// go-sql-driver/mysql driver.
package mysqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jrazmi/minimaltodo/sdk/environment"
)

// MySQL error numbers
const (
	duplicateEntry = 1062
	noSuchTable    = 1146
)

// Set of error variables for CRUD operations.
var (
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
	ErrUndefinedTable    = errors.New("undefined table")
)

// Options represents the exportable database configuration
type Options struct {
	DSN         string        `env:"MYSQL_DSN" default:"root:password@tcp(127.0.0.1:3306)/todo?parseTime=true"`
	MaxOpen     int           `env:"MYSQL_MAX_OPEN_CONNS" default:"10"`
	MaxIdle     int           `env:"MYSQL_MAX_IDLE_CONNS" default:"5"`
	MaxLifetime time.Duration `env:"MYSQL_MAX_LIFETIME" default:"1h"`
}

type options struct {
	dsn            string
	maxOpen        int
	maxIdle        int
	maxLifetime    time.Duration
	connectTimeout time.Duration
	logger         *slog.Logger
}

// Option is a function that configures the database options
type Option func(*options)

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDSN overrides the data source name.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithConnectTimeout bounds the initial ping.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = timeout
	}
}

// NewFromEnv opens a database using environment variables.
func NewFromEnv(prefix string, opts ...Option) (*sql.DB, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	return newDatabase(cfg, opts...)
}

func newDatabase(cfg Options, opts ...Option) (*sql.DB, error) {
	o := &options{
		dsn:            cfg.DSN,
		maxOpen:        cfg.MaxOpen,
		maxIdle:        cfg.MaxIdle,
		maxLifetime:    cfg.MaxLifetime,
		connectTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	dsn, err := NormalizeDSN(o.dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(o.maxOpen)
	db.SetMaxIdleConns(o.maxIdle)
	db.SetConnMaxLifetime(o.maxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), o.connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	o.logger.Info("mysql connected", "max_open", o.maxOpen)
	return db, nil
}

// NormalizeDSN parses dsn and forces the settings the task tables rely on:
// parseTime for DATETIME columns and UTC for stored timestamps.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// StatusCheck returns nil if it can successfully talk to the database
func StatusCheck(ctx context.Context, db *sql.DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// HandleMySQLError converts MySQL errors to application errors
func HandleMySQLError(err error) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case duplicateEntry:
			return fmt.Errorf("%w: %s", ErrDBDuplicatedEntry, myErr.Message)
		case noSuchTable:
			return fmt.Errorf("%w: %s", ErrUndefinedTable, myErr.Message)
		}
	}
	return err
}
