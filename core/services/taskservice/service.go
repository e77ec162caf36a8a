// Package taskservice is the entry point front ends use to change and watch
// tasks.
//
// Mutations are queued and applied in order by a single background worker;
// callers return as soon as the mutation is queued. Completion shows up as a
// new snapshot on the live listing, and failures as a Notice.
package taskservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/infrastructure/workers"
	"github.com/jrazmi/minimaltodo/sdk/broadcast"
	"github.com/jrazmi/minimaltodo/sdk/cryptids"
	"github.com/jrazmi/minimaltodo/sdk/environment"
	"github.com/jrazmi/minimaltodo/sdk/logger"
	"github.com/jrazmi/minimaltodo/sdk/validation"
)

var (
	ErrBlankTitle     = errors.New("task title is blank")
	ErrServiceStopped = errors.New("task service stopped")
)

// Options represents the exportable service configuration.
type Options struct {
	WriteTimeout time.Duration `env:"TASK_WRITE_TIMEOUT" default:"5s"`
	IdleInterval time.Duration `env:"TASK_IDLE_INTERVAL" default:"30s"`
}

type options struct {
	writeTimeout time.Duration
	idleInterval time.Duration
	hooks        bool
}

// Option configures the service.
type Option func(*options)

// WithWriteTimeout bounds each storage write.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// WithIdleInterval sets how long the worker sleeps on an empty queue when
// nothing wakes it.
func WithIdleInterval(d time.Duration) Option {
	return func(o *options) {
		o.idleInterval = d
	}
}

// WithJobLogging logs every mutation start and end at debug level.
func WithJobLogging() Option {
	return func(o *options) {
		o.hooks = true
	}
}

// Service queues task mutations and relays the live listing.
type Service struct {
	log     *logger.Logger
	repo    *tasksrepo.Repository
	pool    *workers.WorkerPool[mutation]
	metrics *workers.InMemoryMetrics
	queue   *queue
	notices *broadcast.Broadcaster[Notice]

	mu      sync.Mutex
	pending int
	idle    chan struct{}
	stopped bool
}

// NewFromEnv creates a service using environment variables.
func NewFromEnv(prefix string, log *logger.Logger, repo *tasksrepo.Repository, opts ...Option) (*Service, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing task service config: %w", err)
	}
	return newService(cfg, log, repo, opts...)
}

// NewService creates a service with default settings.
func NewService(log *logger.Logger, repo *tasksrepo.Repository, opts ...Option) (*Service, error) {
	cfg := Options{
		WriteTimeout: 5 * time.Second,
		IdleInterval: 30 * time.Second,
	}
	return newService(cfg, log, repo, opts...)
}

func newService(cfg Options, log *logger.Logger, repo *tasksrepo.Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("task repository is required")
	}
	o := &options{
		writeTimeout: cfg.WriteTimeout,
		idleInterval: cfg.IdleInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.writeTimeout <= 0 {
		o.writeTimeout = 5 * time.Second
	}

	s := &Service{
		log:     log,
		repo:    repo,
		metrics: workers.NewInMemoryMetrics(),
		notices: broadcast.New[Notice](),
		idle:    closedChan(),
	}
	s.queue = &queue{svc: s}

	// one worker keeps mutations in enqueue order; one attempt, no retry
	pool, err := workers.NewWorkerPool("tasks", 1, workers.Processor[mutation](s.queue),
		workers.WithLogger(log.Logger),
		workers.WithIdleInterval(o.idleInterval),
		workers.WithMaxRetries(1),
		workers.WithMetrics(s.metrics),
		workers.WithMiddleware(workers.Timeout(o.writeTimeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("task worker pool: %w", err)
	}
	if o.hooks {
		pool.AddPreProcessHooks(workers.LogStartHook[mutation](log.Logger))
		pool.AddPostProcessHooks(workers.LogEndHook[mutation](log.Logger))
	}
	s.pool = pool

	return s, nil
}

// AddTask queues creation of a task with the title exactly as given. A blank
// title is rejected with ErrBlankTitle and nothing is queued.
func (s *Service) AddTask(ctx context.Context, title string) error {
	if validation.IsBlank(title) {
		return ErrBlankTitle
	}
	return s.enqueue(ctx, mutation{Op: OpAdd, Title: title})
}

// UpdateTask queues a full replace of the task's title and completion flag.
func (s *Service) UpdateTask(ctx context.Context, task tasksrepo.Task) error {
	return s.enqueue(ctx, mutation{Op: OpUpdate, Task: task})
}

// DeleteTask queues removal of the task.
func (s *Service) DeleteTask(ctx context.Context, task tasksrepo.Task) error {
	return s.enqueue(ctx, mutation{Op: OpDelete, Task: task})
}

// Tasks returns the repository's live listing unchanged.
func (s *Service) Tasks(ctx context.Context) *broadcast.Subscription[[]tasksrepo.Task] {
	return s.repo.Subscribe(ctx)
}

// Snapshot returns the current committed tasks.
func (s *Service) Snapshot(ctx context.Context) ([]tasksrepo.Task, error) {
	return s.repo.List(ctx)
}

// Task returns one committed task.
func (s *Service) Task(ctx context.Context, taskID string) (tasksrepo.Task, error) {
	return s.repo.Get(ctx, taskID)
}

// Notices returns the failure feed. Notices published before the call are
// not replayed.
func (s *Service) Notices(ctx context.Context) *broadcast.Subscription[Notice] {
	return s.notices.Subscribe(ctx)
}

// Run processes queued mutations until ctx is done or Stop is called. A Stop
// that lands before the worker starts is a clean exit.
func (s *Service) Run(ctx context.Context) error {
	defer s.notices.Close()
	err := s.pool.Start(ctx)
	if err != nil && !errors.Is(err, workers.ErrPoolStopped) {
		return fmt.Errorf("task worker pool: %w", err)
	}
	return nil
}

// Stop rejects further mutations and stops the worker after its current
// write. Queued mutations that have not started are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.pool.Stop()
}

// Drain blocks until every queued mutation has been applied or failed.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain with %d pending: %w", s.Pending(), ctx.Err())
	}
}

// Pending returns the number of queued or in-flight mutations.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Metrics returns the worker pool metrics.
func (s *Service) Metrics() workers.MetricsSnapshot {
	return s.pool.GetMetrics()
}

// Running reports whether the worker is running.
func (s *Service) Running() bool {
	return s.pool.Running()
}

func (s *Service) enqueue(ctx context.Context, m mutation) error {
	id, err := cryptids.GeneratePrefixedID("mut")
	if err != nil {
		return fmt.Errorf("mutation id: %w", err)
	}
	m.ID = id
	m.EnqueuedAt = time.Now()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrServiceStopped
	}
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
	s.queue.push(m)
	s.mu.Unlock()

	s.pool.Notify()
	s.log.DebugContext(ctx, "mutation queued", "mutation_id", m.ID, "op", m.Op)
	return nil
}

// done marks one mutation finished.
func (s *Service) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 {
		return
	}
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
