// Package taskspgxstore stores tasks in PostgreSQL.
package taskspgxstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/infrastructure/postgresdb"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// DBTX is the part of *postgresdb.Pool the store uses.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ DBTX = (*postgresdb.Pool)(nil)

type Store struct {
	log  *logger.Logger
	pool DBTX
}

func NewStore(log *logger.Logger, pool DBTX) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) List(ctx context.Context) ([]tasksrepo.Task, error) {
	query := `SELECT task_id, title, is_completed, created_at, updated_at
		FROM tasks
		ORDER BY position`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	return tasks, nil
}

func (s *Store) Insert(ctx context.Context, task tasksrepo.Task) error {
	query := `INSERT INTO tasks (task_id, title, is_completed, created_at, updated_at)
		VALUES (@task_id, @title, @is_completed, @created_at, @updated_at)`

	args := pgx.NamedArgs{
		"task_id":      task.TaskID,
		"title":        task.Title,
		"is_completed": task.IsCompleted,
		"created_at":   task.CreatedAt,
		"updated_at":   task.UpdatedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert task: %w", postgresdb.HandlePgError(err))
	}
	return nil
}

func (s *Store) Update(ctx context.Context, task tasksrepo.Task) error {
	query := `UPDATE tasks
		SET title = @title, is_completed = @is_completed, updated_at = @updated_at
		WHERE task_id = @task_id`

	args := pgx.NamedArgs{
		"task_id":      task.TaskID,
		"title":        task.Title,
		"is_completed": task.IsCompleted,
		"updated_at":   task.UpdatedAt,
	}
	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update task: %w", postgresdb.HandlePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return tasksrepo.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, taskID string) error {
	query := `DELETE FROM tasks WHERE task_id = @task_id`

	tag, err := s.pool.Exec(ctx, query, pgx.NamedArgs{"task_id": taskID})
	if err != nil {
		return fmt.Errorf("delete task: %w", postgresdb.HandlePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return tasksrepo.ErrNotFound
	}
	return nil
}
