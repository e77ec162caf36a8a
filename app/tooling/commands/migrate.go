// Package commands holds the tooling subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/minimaltodo/infrastructure/mysqldb"
	"github.com/jrazmi/minimaltodo/infrastructure/postgresdb"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// ErrUnsupportedDriver is returned for drivers without a schema.
var ErrUnsupportedDriver = errors.New("driver has no schema to migrate")

// Migrate creates the task schema for the SQL driver named by driver.
// Settings for the database are read from the environment under prefix.
func Migrate(ctx context.Context, log *logger.Logger, prefix, driver string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	switch driver {
	case "postgres":
		pool, err := postgresdb.NewFromEnv(prefix,
			postgresdb.WithLogger(log.Logger),
			postgresdb.WithTracer(postgresdb.NewLoggingQueryTracer(log.Logger)),
		)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		log.InfoContext(ctx, "migration started", "driver", driver)
		if err := postgresdb.Migrate(ctx, log.Logger, pool); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}

	case "mysql":
		db, err := mysqldb.NewFromEnv(prefix, mysqldb.WithLogger(log.Logger))
		if err != nil {
			return fmt.Errorf("connect mysql: %w", err)
		}
		defer db.Close()

		log.InfoContext(ctx, "migration started", "driver", driver)
		if err := mysqldb.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate mysql: %w", err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	log.InfoContext(ctx, "migrations completed successfully", "driver", driver)
	return nil
}
