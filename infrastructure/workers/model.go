package workers

import "context"

// Job is a unit of work handled by the pool. Jobs only need an identifier
// for logging and metrics.
type Job interface {
	GetID() string
}

// Processor supplies jobs to the pool and records their outcome.
type Processor[J Job] interface {
	// Checkout returns the next job, or ErrNoWorkAvailable. It must be safe
	// for concurrent workers and must not block waiting for work; the pool
	// parks idle workers itself until Notify is called.
	Checkout(ctx context.Context, workerID string) (J, error)

	// Process executes the job.
	Process(ctx context.Context, job J) (J, error)

	// Complete is called once after Process succeeds.
	Complete(ctx context.Context, job J, processingTimeMS int) error

	// Fail is called once after Process finally fails, including panics.
	Fail(ctx context.Context, job J, err error) error
}

// WorkFunc is one checkout/process/complete cycle for a worker.
type WorkFunc func(ctx context.Context, workerID string) error

// Middleware wraps a WorkFunc with additional behavior.
type Middleware func(WorkFunc) WorkFunc

// PreProcessHook runs after Checkout and before Process.
type PreProcessHook[J Job] func(ctx context.Context, job J) error

// PostProcessHook runs after Process and before Complete or Fail.
type PostProcessHook[J Job] func(ctx context.Context, job J, err error) error
