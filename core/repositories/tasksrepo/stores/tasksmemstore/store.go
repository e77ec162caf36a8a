// Package tasksmemstore keeps tasks in process memory. Nothing survives a
// restart.
package tasksmemstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
)

type Store struct {
	mu    sync.RWMutex
	tasks []tasksrepo.Task
}

func NewStore(seed ...tasksrepo.Task) *Store {
	return &Store{tasks: slices.Clone(seed)}
}

func (s *Store) List(ctx context.Context) ([]tasksrepo.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks), nil
}

func (s *Store) Insert(ctx context.Context, task tasksrepo.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(task.TaskID) >= 0 {
		return fmt.Errorf("insert %s: duplicate id", task.TaskID)
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *Store) Update(ctx context.Context, task tasksrepo.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(task.TaskID)
	if i < 0 {
		return tasksrepo.ErrNotFound
	}
	s.tasks[i].Title = task.Title
	s.tasks[i].IsCompleted = task.IsCompleted
	s.tasks[i].UpdatedAt = task.UpdatedAt
	return nil
}

func (s *Store) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(taskID)
	if i < 0 {
		return tasksrepo.ErrNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t tasksrepo.Task) bool { return t.TaskID == id })
}
