// Package tasksrepo owns the durable set of tasks and its live listing.
//
// Every write goes through Repository, which serializes commits against the
// backing Storer and publishes the full list after each one. Subscribers see
// every committed state in commit order.
package tasksrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/minimaltodo/sdk/broadcast"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// Set of error values for task storage.
var (
	ErrStorageUnavailable = errors.New("task storage unavailable")
	ErrWriteFailure       = errors.New("task write failed")
	ErrNotFound           = errors.New("task not found")
	ErrClosed             = errors.New("task repository closed")
)

// Storer is the durable backend for tasks. List returns tasks in insertion
// order. Update and Delete return ErrNotFound when the id is absent.
type Storer interface {
	List(ctx context.Context) ([]Task, error)
	Insert(ctx context.Context, task Task) error
	Update(ctx context.Context, task Task) error
	Delete(ctx context.Context, taskID string) error
}

// Repository is the single writer for a Storer.
type Repository struct {
	log    *logger.Logger
	storer Storer
	feed   *broadcast.Broadcaster[[]Task]
	now    func() time.Time

	mu     sync.Mutex
	tasks  []Task
	closed bool
}

// NewRepository loads the current task set from storer. A failed load is
// reported as ErrStorageUnavailable.
func NewRepository(ctx context.Context, log *logger.Logger, storer Storer) (*Repository, error) {
	tasks, err := storer.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: initial load: %w", ErrStorageUnavailable, err)
	}
	if tasks == nil {
		tasks = []Task{}
	}

	r := &Repository{
		log:    log,
		storer: storer,
		feed:   broadcast.New[[]Task](broadcast.WithReplay()),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		tasks:  tasks,
	}
	r.feed.Publish(slices.Clone(tasks))

	log.InfoContext(ctx, "task repository ready", "tasks", len(tasks))
	return r, nil
}

// Insert creates a task with a new id and commits it.
func (r *Repository) Insert(ctx context.Context, title string) (Task, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Task{}, fmt.Errorf("%w: generate id: %w", ErrWriteFailure, err)
	}
	now := r.now()
	task := Task{
		TaskID:    id.String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Task{}, ErrClosed
	}

	if err := r.storer.Insert(ctx, task); err != nil {
		r.log.ErrorContext(ctx, "insert task", "task_id", task.TaskID, "error", err)
		return Task{}, fmt.Errorf("%w: insert %s: %w", ErrWriteFailure, task.TaskID, err)
	}

	r.tasks = append(r.tasks, task)
	r.publish()

	r.log.DebugContext(ctx, "task inserted", "task_id", task.TaskID)
	return task, nil
}

// Update replaces the title and completion flag of the stored task with the
// same id. A missing id is a no-op.
func (r *Repository) Update(ctx context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	i := slices.IndexFunc(r.tasks, func(t Task) bool { return t.TaskID == task.TaskID })
	if i < 0 {
		r.log.DebugContext(ctx, "update of unknown task ignored", "task_id", task.TaskID)
		return nil
	}

	next := r.tasks[i]
	next.Title = task.Title
	next.IsCompleted = task.IsCompleted
	next.UpdatedAt = r.now()

	if err := r.storer.Update(ctx, next); err != nil {
		if errors.Is(err, ErrNotFound) {
			r.log.WarnContext(ctx, "task missing from store, dropping", "task_id", task.TaskID)
			r.tasks = slices.Delete(slices.Clone(r.tasks), i, i+1)
			r.publish()
			return nil
		}
		r.log.ErrorContext(ctx, "update task", "task_id", task.TaskID, "error", err)
		return fmt.Errorf("%w: update %s: %w", ErrWriteFailure, task.TaskID, err)
	}

	r.tasks = slices.Clone(r.tasks)
	r.tasks[i] = next
	r.publish()

	r.log.DebugContext(ctx, "task updated", "task_id", task.TaskID, "is_completed", next.IsCompleted)
	return nil
}

// Delete removes the task with the same id. A missing id is a no-op.
func (r *Repository) Delete(ctx context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	i := slices.IndexFunc(r.tasks, func(t Task) bool { return t.TaskID == task.TaskID })
	if i < 0 {
		r.log.DebugContext(ctx, "delete of unknown task ignored", "task_id", task.TaskID)
		return nil
	}

	if err := r.storer.Delete(ctx, task.TaskID); err != nil && !errors.Is(err, ErrNotFound) {
		r.log.ErrorContext(ctx, "delete task", "task_id", task.TaskID, "error", err)
		return fmt.Errorf("%w: delete %s: %w", ErrWriteFailure, task.TaskID, err)
	}

	r.tasks = slices.Delete(slices.Clone(r.tasks), i, i+1)
	r.publish()

	r.log.DebugContext(ctx, "task deleted", "task_id", task.TaskID)
	return nil
}

// List returns the current committed tasks in insertion order.
func (r *Repository) List(ctx context.Context) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tasks), nil
}

// Get returns the committed task with the given id.
func (r *Repository) Get(ctx context.Context, taskID string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := Find(r.tasks, taskID)
	if !ok {
		return Task{}, fmt.Errorf("get %s: %w", taskID, ErrNotFound)
	}
	return t, nil
}

// Subscribe returns the live listing. The current snapshot is delivered
// first, then every later snapshot in commit order. Snapshots are shared and
// must not be modified.
func (r *Repository) Subscribe(ctx context.Context) *broadcast.Subscription[[]Task] {
	return r.feed.Subscribe(ctx)
}

// Subscribers returns the number of live listing subscribers.
func (r *Repository) Subscribers() int {
	return r.feed.Len()
}

// Close ends the live listing. Writes after Close return ErrClosed.
func (r *Repository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.feed.Close()
}

// publish must be called with r.mu held. r.tasks is never mutated in place
// after being published, so the snapshot can be shared.
func (r *Repository) publish() {
	r.feed.Publish(r.tasks)
}
