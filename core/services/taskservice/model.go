package taskservice

import (
	"time"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
)

// Op names a mutation kind.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Notice reports a mutation that could not be committed. The listing is left
// as it was.
type Notice struct {
	Op      Op        `json:"op"`
	TaskID  string    `json:"task_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// mutation is one queued write.
type mutation struct {
	ID         string
	Op         Op
	Title      string
	Task       tasksrepo.Task
	EnqueuedAt time.Time
}

func (m mutation) GetID() string {
	return m.ID
}

func (m mutation) notice(err error) Notice {
	n := Notice{
		Op:      m.Op,
		Title:   m.Title,
		Message: err.Error(),
		At:      time.Now().UTC(),
	}
	if m.Op != OpAdd {
		n.TaskID = m.Task.TaskID
		n.Title = m.Task.Title
	}
	return n
}
