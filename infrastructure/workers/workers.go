// Package workers runs jobs from a Processor on a fixed set of goroutines.
//
// Workers ask the processor for work as fast as it is available. When the
// processor reports ErrNoWorkAvailable a worker parks until Notify is called
// or the idle interval elapses, so producers that call Notify after
// enqueueing get immediate pickup without busy polling.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/minimaltodo/sdk/environment"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrPoolShutdown    = errors.New("pool should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
	ErrPoolRunning     = errors.New("pool already running")
	ErrPoolStopped     = errors.New("pool stopped")
)

// Options represents the exportable worker configuration.
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"worker"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"1"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"100ms"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"30s"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"1"`
	RetryDelay   time.Duration `env:"WORKER_RETRY_DELAY" default:"1s"`
}

// options holds the internal runtime configuration.
type options struct {
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	middlewares  []Middleware
	metrics      WorkerPoolMetrics
	logger       *slog.Logger
}

// Option configures the worker pool.
type Option func(*options)

// WorkerPool runs jobs from a Processor.
type WorkerPool[J Job] struct {
	processor    Processor[J]
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	log          *slog.Logger

	workFunc         WorkFunc
	middlewares      []Middleware
	preProcessHooks  []PreProcessHook[J]
	postProcessHooks []PostProcessHook[J]
	metrics          WorkerPoolMetrics

	mu        sync.Mutex
	cancel    context.CancelFunc
	running   bool
	stopped   bool
	startTime time.Time
	workers   sync.WaitGroup
	wake      chan struct{}
	errors    chan error
}

// WithName sets the worker pool name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithWorkerCount sets the number of workers.
func WithWorkerCount(count int) Option {
	return func(o *options) {
		o.workerCount = count
	}
}

// WithPollInterval sets the pause after a failed cycle.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.pollInterval = interval
	}
}

// WithIdleInterval sets how long an idle worker waits for Notify before
// checking the processor again anyway.
func WithIdleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.idleInterval = interval
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxRetries sets the number of Process attempts per job. 1 disables
// retries.
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
	}
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *options) {
		o.retryDelay = delay
	}
}

// WithMiddleware appends work middleware.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// WithMetrics sets a custom metrics collector.
func WithMetrics(metrics WorkerPoolMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// NewFromEnv creates a worker pool using environment variables.
func NewFromEnv[J Job](prefix string, processor Processor[J], opts ...Option) (*WorkerPool[J], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}
	return newWorkerPool(processor, cfg, opts...)
}

// NewWorkerPool creates a worker pool with the given name and worker count.
func NewWorkerPool[J Job](name string, workerCount int, processor Processor[J], opts ...Option) (*WorkerPool[J], error) {
	cfg := Options{
		Name:         name,
		WorkerCount:  workerCount,
		PollInterval: 100 * time.Millisecond,
		IdleInterval: 30 * time.Second,
		MaxRetries:   1,
		RetryDelay:   time.Second,
	}
	pool, err := newWorkerPool(processor, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("pool setup failure: %w", err)
	}
	return pool, nil
}

func newWorkerPool[J Job](processor Processor[J], cfg Options, opts ...Option) (*WorkerPool[J], error) {
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	internalOpts := &options{
		name:         cfg.Name,
		workerCount:  cfg.WorkerCount,
		pollInterval: cfg.PollInterval,
		idleInterval: cfg.IdleInterval,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		metrics:      NewNoOpMetrics(),
	}
	for _, opt := range opts {
		opt(internalOpts)
	}

	if internalOpts.logger == nil {
		internalOpts.logger = slog.Default()
	}
	if internalOpts.workerCount <= 0 {
		internalOpts.workerCount = 1
	}
	if internalOpts.pollInterval <= 0 {
		internalOpts.pollInterval = 100 * time.Millisecond
	}
	if internalOpts.idleInterval <= 0 {
		internalOpts.idleInterval = 30 * time.Second
	}
	if internalOpts.maxRetries <= 0 {
		internalOpts.maxRetries = 1
	}
	if internalOpts.retryDelay <= 0 {
		internalOpts.retryDelay = time.Second
	}

	pool := &WorkerPool[J]{
		processor:    processor,
		name:         internalOpts.name,
		workerCount:  internalOpts.workerCount,
		pollInterval: internalOpts.pollInterval,
		idleInterval: internalOpts.idleInterval,
		maxRetries:   internalOpts.maxRetries,
		retryDelay:   internalOpts.retryDelay,
		log:          internalOpts.logger,
		middlewares:  internalOpts.middlewares,
		metrics:      internalOpts.metrics,
		wake:         make(chan struct{}, internalOpts.workerCount),
		errors:       make(chan error, internalOpts.workerCount),
	}
	pool.buildMiddlewareChain()

	return pool, nil
}

// Name returns the pool name.
func (wp *WorkerPool[J]) Name() string {
	return wp.name
}

// Start runs the workers and blocks until ctx is done, Stop is called, or a
// worker asks for pool shutdown. In the last case the worker's error is
// returned.
func (wp *WorkerPool[J]) Start(ctx context.Context) error {
	wp.mu.Lock()
	if wp.running {
		wp.mu.Unlock()
		return ErrPoolRunning
	}
	if wp.stopped {
		wp.mu.Unlock()
		return ErrPoolStopped
	}
	ctx, cancel := context.WithCancel(ctx)
	wp.cancel = cancel
	wp.running = true
	wp.startTime = time.Now()
	wp.mu.Unlock()
	defer cancel()

	wp.log.InfoContext(ctx, "starting worker pool",
		"name", wp.name,
		"worker_count", wp.workerCount,
		"idle_interval", wp.idleInterval,
		"max_retries", wp.maxRetries,
	)
	wp.metrics.Start(ctx, wp.name)

	for i := range wp.workerCount {
		workerID := fmt.Sprintf("%s-worker-%d", wp.name, i+1)
		wp.workers.Add(1)
		go wp.worker(ctx, workerID)
	}

	var poolErr error
	done := make(chan struct{})
	go func() {
		wp.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case poolErr = <-wp.errors:
		cancel()
		<-done
	}

	wp.metrics.Stop(context.WithoutCancel(ctx))
	wp.log.InfoContext(context.WithoutCancel(ctx), "worker pool stopped",
		"name", wp.name,
		"total_runtime", time.Since(wp.startTime))

	wp.mu.Lock()
	wp.running = false
	wp.stopped = true
	wp.mu.Unlock()
	return poolErr
}

// Stop asks the pool to shut down. Workers finish their current job first.
// Calling Stop before Start makes a later Start return ErrPoolStopped.
func (wp *WorkerPool[J]) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.stopped {
		return
	}
	wp.stopped = true
	if wp.cancel != nil {
		wp.log.Info("stopping worker pool", "name", wp.name)
		wp.cancel()
	}
}

// Running reports whether Start is in progress.
func (wp *WorkerPool[J]) Running() bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.running
}

// Notify wakes one idle worker. Producers call it after making work
// available. It never blocks.
func (wp *WorkerPool[J]) Notify() {
	select {
	case wp.wake <- struct{}{}:
	default:
	}
}

func (wp *WorkerPool[J]) worker(ctx context.Context, workerID string) {
	defer wp.workers.Done()
	defer wp.metrics.RecordWorkerStopped()

	wp.log.DebugContext(ctx, "worker started", "worker_id", workerID, "pool", wp.name)
	defer wp.log.DebugContext(context.WithoutCancel(ctx), "worker stopped", "worker_id", workerID, "pool", wp.name)

	wp.metrics.RecordWorkerStarted()

	idle := time.NewTimer(wp.idleInterval)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		err := wp.workWithPanicRecovery(ctx, workerID)

		var pause time.Duration
		switch {
		case err == nil:
			continue

		case errors.Is(err, ErrWorkerShutdown):
			wp.log.InfoContext(ctx, "worker shutting down as requested", "worker_id", workerID)
			return

		case errors.Is(err, ErrPoolShutdown):
			wp.log.ErrorContext(ctx, "worker requesting pool shutdown", "worker_id", workerID, "error", err)
			select {
			case wp.errors <- fmt.Errorf("worker %s: %w", workerID, err):
			default:
				wp.log.ErrorContext(ctx, "error channel full, critical error not sent", "worker_id", workerID)
			}
			return

		case errors.Is(err, ErrNoWorkAvailable):
			pause = wp.idleInterval

		default:
			wp.log.ErrorContext(ctx, "work cycle error", "worker_id", workerID, "error", err)
			pause = wp.pollInterval
		}

		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(pause)

		select {
		case <-ctx.Done():
			return
		case <-wp.wake:
		case <-idle.C:
		}
	}
}

// workWithPanicRecovery runs one cycle, converting a panic outside Process
// (in Checkout or middleware) into an error.
func (wp *WorkerPool[J]) workWithPanicRecovery(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()))
			wp.metrics.RecordWorkerPanic()
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return wp.workFunc(ctx, workerID)
}

// work runs Checkout -> hooks -> Process -> hooks -> Complete/Fail.
func (wp *WorkerPool[J]) work(ctx context.Context, workerID string) error {
	job, err := wp.processor.Checkout(ctx, workerID)
	if err != nil {
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		wp.metrics.RecordCheckoutError()
		return fmt.Errorf("checkout failed: %w", err)
	}
	wp.metrics.RecordJobCheckedOut()

	var processErr error
	var processed J
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)

		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in job",
				"worker_id", workerID,
				"job_id", job.GetID(),
				"panic", r,
				"stack_trace", string(debug.Stack()))
			wp.metrics.RecordWorkerPanic()
			processErr = fmt.Errorf("panic: %v", r)
		}

		hookJob := processed
		if processErr != nil {
			hookJob = job
		}
		for _, hook := range wp.postProcessHooks {
			if err := hook(ctx, hookJob, processErr); err != nil {
				wp.log.ErrorContext(ctx, "post-process hook failed", "job_id", job.GetID(), "error", err)
			}
		}

		if processErr != nil {
			wp.metrics.RecordJobFailed(duration)
			if failErr := wp.processor.Fail(ctx, job, processErr); failErr != nil {
				wp.log.ErrorContext(ctx, "failed to mark job as failed", "job_id", job.GetID(), "error", failErr)
			}
			return
		}
		wp.metrics.RecordJobCompleted(duration)
		if completeErr := wp.processor.Complete(ctx, processed, int(duration.Milliseconds())); completeErr != nil {
			wp.log.ErrorContext(ctx, "failed to mark job as complete", "job_id", job.GetID(), "error", completeErr)
		}
	}()

	for _, hook := range wp.preProcessHooks {
		if err := hook(ctx, job); err != nil {
			wp.log.ErrorContext(ctx, "pre-process hook failed", "job_id", job.GetID(), "error", err)
		}
	}

	processed, processErr = wp.processWithRetry(ctx, job)
	if processErr != nil {
		return fmt.Errorf("job %s: %w", job.GetID(), processErr)
	}
	return nil
}

// processWithRetry calls Process up to maxRetries times with exponential
// backoff starting at retryDelay.
func (wp *WorkerPool[J]) processWithRetry(ctx context.Context, job J) (J, error) {
	var lastErr error
	var processed J

	for attempt := 1; attempt <= wp.maxRetries; attempt++ {
		if attempt > 1 {
			wp.metrics.RecordRetryAttempt()
			delay := wp.retryDelay * time.Duration(1<<(attempt-2))
			wp.log.InfoContext(ctx, "retrying job",
				"job_id", job.GetID(),
				"attempt", attempt,
				"max_attempts", wp.maxRetries,
				"delay", delay)
			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(delay):
			}
		}

		processed, lastErr = wp.processor.Process(ctx, job)
		if lastErr == nil {
			if attempt > 1 {
				wp.metrics.RecordRetrySuccess()
			}
			return processed, nil
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
	}

	if wp.maxRetries > 1 {
		wp.metrics.RecordRetryExhausted()
		return processed, fmt.Errorf("failed after %d attempts: %w", wp.maxRetries, lastErr)
	}
	return processed, lastErr
}

// GetMetrics returns the current metrics snapshot.
func (wp *WorkerPool[J]) GetMetrics() MetricsSnapshot {
	return wp.metrics.GetSnapshot()
}
