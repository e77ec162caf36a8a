package mysqldb

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations run in order; each is idempotent.
var migrations = []struct {
	name string
	ddl  string
}{
	{
		name: "001_tasks",
		ddl: `CREATE TABLE IF NOT EXISTS tasks (
    position BIGINT NOT NULL AUTO_INCREMENT UNIQUE,
    task_id VARCHAR(36) NOT NULL PRIMARY KEY,
    title TEXT NOT NULL,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at DATETIME(6) NOT NULL,
    updated_at DATETIME(6) NOT NULL
)`,
	},
}

// Migrate creates the task tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("apply %s: %w", m.name, HandleMySQLError(err))
		}
	}
	return nil
}
