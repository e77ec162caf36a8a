package workers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrazmi/minimaltodo/infrastructure/workers"
)

func TestMiddleware_ExecutionOrder(t *testing.T) {
	processor := NewStubProcessor()
	processor.AddJob(TestJob{ID: "test-1"})

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}
	named := func(name string) workers.Middleware {
		return func(next workers.WorkFunc) workers.WorkFunc {
			return func(ctx context.Context, workerID string) error {
				record(name + "-before")
				err := next(ctx, workerID)
				record(name + "-after")
				return err
			}
		}
	}

	pool, err := workers.NewWorkerPool("mw", 1, processor,
		workers.WithLogger(quietLogger()),
		workers.WithIdleInterval(time.Hour),
		workers.WithMiddleware(named("m1"), named("m2")),
	)
	if err != nil {
		t.Fatal(err)
	}
	startPool(t, pool)

	waitFor(t, "completion", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return processor.completeCount.Load() == 1 && len(order) >= 4
	})

	mu.Lock()
	defer mu.Unlock()
	want := []string{"m1-before", "m2-before", "m2-after", "m1-after"}
	for i, w := range want {
		if i >= len(order) || order[i] != w {
			t.Fatalf("order = %v, want prefix %v", order, want)
		}
	}
}

func TestMiddleware_Timeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	work := workers.Timeout(50 * time.Millisecond)(func(ctx context.Context, workerID string) error {
		deadline, ok = ctx.Deadline()
		return nil
	})
	if err := work(context.Background(), "w"); err != nil {
		t.Fatal(err)
	}
	if !ok || time.Until(deadline) > 50*time.Millisecond {
		t.Errorf("expected deadline within 50ms, got %v (set=%v)", deadline, ok)
	}
}
