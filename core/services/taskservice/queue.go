package taskservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrazmi/minimaltodo/infrastructure/workers"
)

// queue is the FIFO of pending mutations and the worker pool's Processor.
type queue struct {
	svc *Service

	mu    sync.Mutex
	items []mutation
}

func (q *queue) push(m mutation) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue) Checkout(ctx context.Context, workerID string) (mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return mutation{}, workers.ErrNoWorkAvailable
	}
	m := q.items[0]
	q.items[0] = mutation{}
	q.items = q.items[1:]
	return m, nil
}

// Process applies m to the repository. The write is detached from pool
// shutdown so a commit is never abandoned halfway, but keeps the cycle
// deadline set by the Timeout middleware.
func (q *queue) Process(ctx context.Context, m mutation) (mutation, error) {
	wctx := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		wctx, cancel = context.WithDeadline(wctx, deadline)
		defer cancel()
	}

	repo := q.svc.repo
	switch m.Op {
	case OpAdd:
		task, err := repo.Insert(wctx, m.Title)
		if err != nil {
			return m, err
		}
		m.Task = task
	case OpUpdate:
		if err := repo.Update(wctx, m.Task); err != nil {
			return m, err
		}
	case OpDelete:
		if err := repo.Delete(wctx, m.Task); err != nil {
			return m, err
		}
	default:
		return m, fmt.Errorf("unknown op %q", m.Op)
	}
	return m, nil
}

func (q *queue) Complete(ctx context.Context, m mutation, processingTimeMS int) error {
	q.svc.log.DebugContext(ctx, "mutation applied",
		"mutation_id", m.ID,
		"op", m.Op,
		"task_id", m.Task.TaskID,
		"queued_for", time.Since(m.EnqueuedAt),
		"processing_ms", processingTimeMS)
	q.svc.done()
	return nil
}

func (q *queue) Fail(ctx context.Context, m mutation, err error) error {
	q.svc.log.WarnContext(ctx, "mutation failed", "mutation_id", m.ID, "op", m.Op, "error", err)
	q.svc.notices.Publish(m.notice(err))
	q.svc.done()
	return nil
}
