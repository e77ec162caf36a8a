package workers

import (
	"context"
	"time"
)

// buildMiddlewareChain wraps the base work function; the first middleware
// added is the outermost.
func (wp *WorkerPool[J]) buildMiddlewareChain() {
	wp.workFunc = wp.work
	for i := len(wp.middlewares) - 1; i >= 0; i-- {
		wp.workFunc = wp.middlewares[i](wp.workFunc)
	}
}

// Timeout bounds each work cycle with a deadline of d.
func Timeout(d time.Duration) Middleware {
	return func(next WorkFunc) WorkFunc {
		return func(ctx context.Context, workerID string) error {
			if d <= 0 {
				return next(ctx, workerID)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, workerID)
		}
	}
}
