// Package repositories builds the task repository on top of the storage
// backend selected by configuration.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo/stores/tasksjsonstore"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo/stores/tasksmysqlstore"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/minimaltodo/infrastructure/mysqldb"
	"github.com/jrazmi/minimaltodo/infrastructure/postgresdb"
	"github.com/jrazmi/minimaltodo/sdk/environment"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// Storage drivers.
const (
	DriverJSON     = "json"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Options selects and configures the task backend.
type Options struct {
	Driver   string `env:"STORE_DRIVER" default:"json"`
	DataFile string `env:"STORE_DATA_FILE" default:"data/tasks.json"`
	Migrate  bool   `env:"STORE_MIGRATE" default:"true"`
}

// Repositories holds the repositories for one process along with the
// resources backing them.
type Repositories struct {
	Tasks *tasksrepo.Repository

	driver string
	status func(ctx context.Context) error
	closer func() error
}

// NewFromEnv reads Options using prefix and opens the configured backend.
// Database drivers read their own settings under the same prefix.
func NewFromEnv(ctx context.Context, prefix string, log *logger.Logger) (*Repositories, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing store config: %w", err)
	}
	return New(ctx, prefix, log, cfg)
}

// New opens the backend named by cfg.Driver. Any failure to reach the
// backend or load the initial task set wraps tasksrepo.ErrStorageUnavailable.
func New(ctx context.Context, prefix string, log *logger.Logger, cfg Options) (*Repositories, error) {
	r := &Repositories{
		driver: strings.ToLower(cfg.Driver),
		status: func(context.Context) error { return nil },
		closer: func() error { return nil },
	}

	var storer tasksrepo.Storer
	switch r.driver {
	case DriverJSON:
		s, err := tasksjsonstore.NewStore(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tasksrepo.ErrStorageUnavailable, err)
		}
		log.InfoContext(ctx, "startup", "store", r.driver, "file", s.Filename())
		storer = s
		r.closer = s.Close

	case DriverMemory:
		storer = tasksmemstore.NewStore()

	case DriverPostgres:
		pool, err := postgresdb.NewFromEnv(prefix, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tasksrepo.ErrStorageUnavailable, err)
		}
		if err := migratePostgres(ctx, cfg, log, pool); err != nil {
			pool.Close()
			return nil, err
		}
		storer = taskspgxstore.NewStore(log, pool)
		r.status = func(ctx context.Context) error { return postgresdb.StatusCheck(ctx, pool) }
		r.closer = func() error { pool.Close(); return nil }

	case DriverMySQL:
		db, err := mysqldb.NewFromEnv(prefix, mysqldb.WithLogger(log.Logger))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tasksrepo.ErrStorageUnavailable, err)
		}
		if err := migrateMySQL(ctx, cfg, db); err != nil {
			db.Close()
			return nil, err
		}
		storer = tasksmysqlstore.NewStore(log, db)
		r.status = func(ctx context.Context) error { return mysqldb.StatusCheck(ctx, db) }
		r.closer = db.Close

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	tasks, err := tasksrepo.NewRepository(ctx, log, storer)
	if err != nil {
		r.closer()
		return nil, err
	}
	r.Tasks = tasks
	return r, nil
}

func migratePostgres(ctx context.Context, cfg Options, log *logger.Logger, pool *pgxpool.Pool) error {
	if !cfg.Migrate {
		return nil
	}
	if err := postgresdb.Migrate(ctx, log.Logger, pool); err != nil {
		return fmt.Errorf("%w: migrate: %w", tasksrepo.ErrStorageUnavailable, err)
	}
	return nil
}

func migrateMySQL(ctx context.Context, cfg Options, db *sql.DB) error {
	if !cfg.Migrate {
		return nil
	}
	if err := mysqldb.Migrate(ctx, db); err != nil {
		return fmt.Errorf("%w: migrate: %w", tasksrepo.ErrStorageUnavailable, err)
	}
	return nil
}

// Driver names the active backend.
func (r *Repositories) Driver() string {
	return r.driver
}

// StatusCheck reports whether the backend is reachable.
func (r *Repositories) StatusCheck(ctx context.Context) error {
	return r.status(ctx)
}

// Close ends the live listings and releases the backend.
func (r *Repositories) Close() error {
	r.Tasks.Close()
	return r.closer()
}
