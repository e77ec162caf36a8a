// Package tasksjsonstore persists tasks to a single JSON file.
//
// The file is rewritten whole on every change by writing a sibling temp file
// and renaming it over the original, so a crash mid-write leaves either the
// old or the new contents and never a partial record.
package tasksjsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
)

// Store implements tasksrepo.Storer on a JSON file.
type Store struct {
	filename string
	mu       sync.RWMutex
	data     jsonData
}

type jsonData struct {
	Tasks []tasksrepo.Task `json:"tasks"`
}

// NewStore opens filename, creating its directory if needed. A missing file
// is an empty store; it is created on the first write.
func NewStore(filename string) (*Store, error) {
	s := &Store{
		filename: filename,
		data:     jsonData{Tasks: []tasksrepo.Task{}},
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	raw, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if s.data.Tasks == nil {
		s.data.Tasks = []tasksrepo.Task{}
	}
	return s, nil
}

// Filename returns the backing file path.
func (s *Store) Filename() string {
	return s.filename
}

func (s *Store) List(ctx context.Context) ([]tasksrepo.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Tasks), nil
}

func (s *Store) Insert(ctx context.Context, task tasksrepo.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(task.TaskID) >= 0 {
		return fmt.Errorf("insert %s: duplicate id", task.TaskID)
	}
	next := append(slices.Clone(s.data.Tasks), task)
	return s.commit(next)
}

func (s *Store) Update(ctx context.Context, task tasksrepo.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(task.TaskID)
	if i < 0 {
		return tasksrepo.ErrNotFound
	}
	next := slices.Clone(s.data.Tasks)
	next[i].Title = task.Title
	next[i].IsCompleted = task.IsCompleted
	next[i].UpdatedAt = task.UpdatedAt
	return s.commit(next)
}

func (s *Store) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(taskID)
	if i < 0 {
		return tasksrepo.ErrNotFound
	}
	next := slices.Delete(slices.Clone(s.data.Tasks), i, i+1)
	return s.commit(next)
}

// Close is a no-op; every write is already on disk.
func (s *Store) Close() error {
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.data.Tasks, func(t tasksrepo.Task) bool { return t.TaskID == id })
}

// commit writes tasks to disk and only then adopts them in memory.
func (s *Store) commit(tasks []tasksrepo.Task) error {
	if err := s.save(jsonData{Tasks: tasks}); err != nil {
		return err
	}
	s.data.Tasks = tasks
	return nil
}

func (s *Store) save(d jsonData) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filename), "."+filepath.Base(s.filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.filename); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
