package tasksrepo

import (
	"slices"
	"time"
)

// Task is a single to-do item.
type Task struct {
	TaskID      string    `json:"task_id" db:"task_id"`
	Title       string    `json:"title" db:"title"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// WithCompleted returns a copy of t with IsCompleted set to done.
func (t Task) WithCompleted(done bool) Task {
	t.IsCompleted = done
	return t
}

// Find returns the task with the given id from a snapshot.
func Find(tasks []Task, id string) (Task, bool) {
	i := slices.IndexFunc(tasks, func(t Task) bool { return t.TaskID == id })
	if i < 0 {
		return Task{}, false
	}
	return tasks[i], true
}
