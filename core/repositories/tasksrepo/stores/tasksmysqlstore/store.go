// Package tasksmysqlstore stores tasks in MySQL.
package tasksmysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/infrastructure/mysqldb"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

type Store struct {
	log *logger.Logger
	db  *sql.DB
}

func NewStore(log *logger.Logger, db *sql.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) List(ctx context.Context) ([]tasksrepo.Task, error) {
	query := `SELECT task_id, title, is_completed, created_at, updated_at
		FROM tasks
		ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mysqldb.HandleMySQLError(err)
	}
	defer rows.Close()

	tasks := []tasksrepo.Task{}
	for rows.Next() {
		var t tasksrepo.Task
		if err := rows.Scan(&t.TaskID, &t.Title, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mysqldb.HandleMySQLError(err)
	}
	return tasks, nil
}

func (s *Store) Insert(ctx context.Context, task tasksrepo.Task) error {
	query := `INSERT INTO tasks (task_id, title, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, task.TaskID, task.Title, task.IsCompleted, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", mysqldb.HandleMySQLError(err))
	}
	return nil
}

func (s *Store) Update(ctx context.Context, task tasksrepo.Task) error {
	// MySQL reports rows changed, not rows matched, so existence is
	// checked separately when nothing changed.
	query := `UPDATE tasks SET title = ?, is_completed = ?, updated_at = ? WHERE task_id = ?`

	res, err := s.db.ExecContext(ctx, query, task.Title, task.IsCompleted, task.UpdatedAt, task.TaskID)
	if err != nil {
		return fmt.Errorf("update task: %w", mysqldb.HandleMySQLError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n > 0 {
		return nil
	}
	return s.exists(ctx, task.TaskID)
}

func (s *Store) Delete(ctx context.Context, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", mysqldb.HandleMySQLError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return tasksrepo.ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, taskID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE task_id = ?`, taskID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return tasksrepo.ErrNotFound
	case err != nil:
		return mysqldb.HandleMySQLError(err)
	}
	return nil
}
