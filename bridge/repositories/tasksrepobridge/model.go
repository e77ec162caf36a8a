package tasksrepobridge

import (
	"errors"
	"time"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/services/taskservice"
	"github.com/jrazmi/minimaltodo/infrastructure/workers"
	"github.com/jrazmi/minimaltodo/sdk/validation"
)

// AddTaskInput is the POST /tasks body.
type AddTaskInput struct {
	Title string `json:"title"`
}

// UpdateTaskInput is the PUT /tasks/{task_id} body. Both fields are
// required since an update replaces the whole record.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"is_completed"`
}

func (in UpdateTaskInput) Validate() error {
	if in.Title == nil || in.IsCompleted == nil {
		return errors.New("title and is_completed are required")
	}
	return nil
}

// ToggleInput is the optional PATCH /tasks/{task_id}/toggle body. Without
// it the completion flag is flipped.
type ToggleInput struct {
	IsCompleted *bool `json:"is_completed"`
}

// Accepted is returned for queued mutations.
type Accepted struct {
	Status string `json:"status"`
	TaskID string `json:"task_id,omitempty"`
}

// Health is the /health body.
type Health struct {
	Status    string                  `json:"status"`
	Store     string                  `json:"store"`
	StoreErr  string                  `json:"store_error,omitempty"`
	Tasks     int                     `json:"tasks"`
	Pending   int                     `json:"pending"`
	Running   bool                    `json:"running"`
	Worker    workers.MetricsSnapshot `json:"worker"`
	CheckedAt time.Time               `json:"checked_at"`
}

const (
	frameSnapshot = "snapshot"
	frameNotice   = "notice"
)

type snapshotFrame struct {
	Type  string           `json:"type"`
	Tasks []tasksrepo.Task `json:"tasks"`
}

type noticeFrame struct {
	Type   string             `json:"type"`
	Notice taskservice.Notice `json:"notice"`
}

func nonNil(tasks []tasksrepo.Task) []tasksrepo.Task {
	if tasks == nil {
		return []tasksrepo.Task{}
	}
	return tasks
}

func exportFilename(title string) string {
	slug := validation.Slugify(title)
	if slug == "" {
		slug = "tasks"
	}
	return slug + ".pdf"
}
