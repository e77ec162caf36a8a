package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPoolMetrics collects pool orchestration metrics.
type WorkerPoolMetrics interface {
	RecordWorkerStarted()
	RecordWorkerStopped()
	RecordWorkerPanic()

	RecordJobCheckedOut()
	RecordJobCompleted(duration time.Duration)
	RecordJobFailed(duration time.Duration)
	RecordCheckoutError()

	RecordRetryAttempt()
	RecordRetrySuccess()
	RecordRetryExhausted()

	GetSnapshot() MetricsSnapshot

	Start(ctx context.Context, poolName string)
	Stop(ctx context.Context)
}

// MetricsSnapshot is a point-in-time view of pool metrics.
type MetricsSnapshot struct {
	Pool string `json:"pool"`

	WorkersStarted int64 `json:"workers_started"`
	WorkersStopped int64 `json:"workers_stopped"`
	WorkersActive  int64 `json:"workers_active"`
	WorkerPanics   int64 `json:"worker_panics"`

	JobsCheckedOut int64 `json:"jobs_checked_out"`
	JobsCompleted  int64 `json:"jobs_completed"`
	JobsFailed     int64 `json:"jobs_failed"`
	JobsInProgress int64 `json:"jobs_in_progress"`
	CheckoutErrors int64 `json:"checkout_errors"`

	RetryAttempts    int64 `json:"retry_attempts"`
	RetrySuccesses   int64 `json:"retry_successes"`
	RetriesExhausted int64 `json:"retries_exhausted"`

	AverageDuration time.Duration `json:"average_duration_ns"`
	MinDuration     time.Duration `json:"min_duration_ns"`
	MaxDuration     time.Duration `json:"max_duration_ns"`

	ErrorRate float64 `json:"error_rate"`

	CollectedAt    time.Time     `json:"collected_at"`
	UptimeDuration time.Duration `json:"uptime_ns"`
}

// ================================================================================
// NoOpMetrics
// ================================================================================

type NoOpMetrics struct{}

func NewNoOpMetrics() WorkerPoolMetrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) RecordWorkerStarted()                       {}
func (n *NoOpMetrics) RecordWorkerStopped()                       {}
func (n *NoOpMetrics) RecordWorkerPanic()                         {}
func (n *NoOpMetrics) RecordJobCheckedOut()                       {}
func (n *NoOpMetrics) RecordJobCompleted(duration time.Duration)  {}
func (n *NoOpMetrics) RecordJobFailed(duration time.Duration)     {}
func (n *NoOpMetrics) RecordCheckoutError()                       {}
func (n *NoOpMetrics) RecordRetryAttempt()                        {}
func (n *NoOpMetrics) RecordRetrySuccess()                        {}
func (n *NoOpMetrics) RecordRetryExhausted()                      {}
func (n *NoOpMetrics) GetSnapshot() MetricsSnapshot               { return MetricsSnapshot{} }
func (n *NoOpMetrics) Start(ctx context.Context, poolName string) {}
func (n *NoOpMetrics) Stop(ctx context.Context)                   {}

// ================================================================================
// InMemoryMetrics
// ================================================================================

// InMemoryMetrics keeps counters in memory for health reporting.
type InMemoryMetrics struct {
	mu          sync.RWMutex
	poolName    string
	startTime   time.Time
	minDuration time.Duration
	maxDuration time.Duration

	workersStarted atomic.Int64
	workersStopped atomic.Int64
	workerPanics   atomic.Int64

	jobsCheckedOut atomic.Int64
	jobsCompleted  atomic.Int64
	jobsFailed     atomic.Int64
	checkoutErrors atomic.Int64

	retryAttempts    atomic.Int64
	retrySuccesses   atomic.Int64
	retriesExhausted atomic.Int64

	totalDurationNs atomic.Int64
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (m *InMemoryMetrics) Start(ctx context.Context, poolName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poolName = poolName
	m.startTime = time.Now()
}

func (m *InMemoryMetrics) Stop(ctx context.Context) {}

func (m *InMemoryMetrics) RecordWorkerStarted()  { m.workersStarted.Add(1) }
func (m *InMemoryMetrics) RecordWorkerStopped()  { m.workersStopped.Add(1) }
func (m *InMemoryMetrics) RecordWorkerPanic()    { m.workerPanics.Add(1) }
func (m *InMemoryMetrics) RecordJobCheckedOut()  { m.jobsCheckedOut.Add(1) }
func (m *InMemoryMetrics) RecordCheckoutError()  { m.checkoutErrors.Add(1) }
func (m *InMemoryMetrics) RecordRetryAttempt()   { m.retryAttempts.Add(1) }
func (m *InMemoryMetrics) RecordRetrySuccess()   { m.retrySuccesses.Add(1) }
func (m *InMemoryMetrics) RecordRetryExhausted() { m.retriesExhausted.Add(1) }

func (m *InMemoryMetrics) RecordJobCompleted(duration time.Duration) {
	m.jobsCompleted.Add(1)
	m.recordDuration(duration)
}

func (m *InMemoryMetrics) RecordJobFailed(duration time.Duration) {
	m.jobsFailed.Add(1)
	m.recordDuration(duration)
}

func (m *InMemoryMetrics) recordDuration(duration time.Duration) {
	m.totalDurationNs.Add(int64(duration))

	m.mu.Lock()
	defer m.mu.Unlock()
	if duration < m.minDuration {
		m.minDuration = duration
	}
	if duration > m.maxDuration {
		m.maxDuration = duration
	}
}

func (m *InMemoryMetrics) GetSnapshot() MetricsSnapshot {
	now := time.Now()

	m.mu.RLock()
	poolName := m.poolName
	startTime := m.startTime
	minDur := m.minDuration
	maxDur := m.maxDuration
	m.mu.RUnlock()

	started := m.workersStarted.Load()
	stopped := m.workersStopped.Load()
	completed := m.jobsCompleted.Load()
	failed := m.jobsFailed.Load()
	checkedOut := m.jobsCheckedOut.Load()
	total := completed + failed

	var avg time.Duration
	var errorRate float64
	if total > 0 {
		avg = time.Duration(m.totalDurationNs.Load() / total)
		errorRate = float64(failed) / float64(total) * 100
	}
	if minDur == time.Duration(1<<63-1) {
		minDur = 0
	}
	var uptime time.Duration
	if !startTime.IsZero() {
		uptime = now.Sub(startTime)
	}

	return MetricsSnapshot{
		Pool: poolName,

		WorkersStarted: started,
		WorkersStopped: stopped,
		WorkersActive:  started - stopped,
		WorkerPanics:   m.workerPanics.Load(),

		JobsCheckedOut: checkedOut,
		JobsCompleted:  completed,
		JobsFailed:     failed,
		JobsInProgress: checkedOut - total,
		CheckoutErrors: m.checkoutErrors.Load(),

		RetryAttempts:    m.retryAttempts.Load(),
		RetrySuccesses:   m.retrySuccesses.Load(),
		RetriesExhausted: m.retriesExhausted.Load(),

		AverageDuration: avg,
		MinDuration:     minDur,
		MaxDuration:     maxDur,

		ErrorRate: errorRate,

		CollectedAt:    now,
		UptimeDuration: uptime,
	}
}
