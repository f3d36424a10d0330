package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

var (
	// ErrPoolNotRunning is returned when submitting to a pool that is not started.
	ErrPoolNotRunning = errors.New("pool is not running")

	// ErrQueueFull is returned by TrySubmit when every queue slot is taken.
	ErrQueueFull = errors.New("pool queue is full")
)

// PoolState represents the current state of the pool.
type PoolState int32

const (
	// PoolStateStopped means the pool is not running.
	PoolStateStopped PoolState = iota

	// PoolStateRunning means the pool is accepting and processing units.
	PoolStateRunning

	// PoolStateDraining means the pool is shutting down gracefully.
	PoolStateDraining
)

// String returns the string representation of a pool state.
func (s PoolState) String() string {
	switch s {
	case PoolStateStopped:
		return "stopped"
	case PoolStateRunning:
		return "running"
	case PoolStateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// Job is one unit of work. Name is used for logging only.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs submitted jobs on a fixed number of goroutines. Jobs wait in a
// bounded queue when every worker is busy. Every job accepted by Submit or
// TrySubmit runs, unless Stop gives up on the drain. A stopped pool can be
// started again.
type Pool struct {
	name   string
	config Config
	logger logger.Logger
	state  atomic.Int32
	queue  chan Job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	// mu orders state changes against enqueues. submitters counts enqueues
	// in progress; Stop waits for them before telling workers to drain.
	mu         sync.RWMutex
	submitters sync.WaitGroup
	stopCh     chan struct{}
	drainCh    chan struct{}

	busy      atomic.Int32
	processed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a new pool. name identifies the pool in logs.
func NewPool(name string, cfg Config, log logger.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &Pool{
		name:   name,
		config: cfg,
		logger: log.With(logger.String("pool", name)),
		queue:  make(chan Job, cfg.QueueSize),
	}
	p.state.Store(int32(PoolStateStopped))

	return p, nil
}

// Start launches the workers. Jobs run under ctx, so cancelling it abandons
// in-flight work.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State() != PoolStateStopped {
		return errors.New("pool is already running")
	}

	p.stopCh = make(chan struct{})
	p.drainCh = make(chan struct{})
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for i := range p.config.PoolSize {
		p.wg.Add(1)
		go p.work(runCtx, i, p.drainCh)
	}
	p.state.Store(int32(PoolStateRunning))

	p.logger.Info("worker pool started",
		logger.Int("pool_size", p.config.PoolSize),
		logger.Int("queue_size", p.config.QueueSize),
	)

	return nil
}

// Stop stops accepting jobs and waits for queued and running jobs to finish,
// bounded by ctx and the configured drain timeout.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.State() != PoolStateRunning {
		p.mu.Unlock()
		return ErrPoolNotRunning
	}
	p.state.Store(int32(PoolStateDraining))
	close(p.stopCh)
	drainCh, cancel := p.drainCh, p.cancel
	p.mu.Unlock()

	p.logger.Info("worker pool draining")

	// No enqueue can start once the state left running; wait out the ones
	// already past the check so the queue is final before workers drain it.
	p.submitters.Wait()
	close(drainCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
	case <-ctx.Done():
		p.logger.Warn("worker pool stop timed out")
	case <-time.After(p.config.DrainTimeout):
		p.logger.Warn("worker pool drain timeout exceeded")
	}

	cancel()
	p.state.Store(int32(PoolStateStopped))
	return nil
}

// Submit queues a job, blocking while the queue is full. A pool that starts
// stopping meanwhile rejects the job with ErrPoolNotRunning.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	stopCh, err := p.beginSubmit()
	if err != nil {
		return err
	}
	defer p.submitters.Done()

	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-stopCh:
		return ErrPoolNotRunning
	}
}

// TrySubmit queues a job without blocking and returns ErrQueueFull when the
// pool is saturated.
func (p *Pool) TrySubmit(job Job) error {
	if _, err := p.beginSubmit(); err != nil {
		return err
	}
	defer p.submitters.Done()

	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// beginSubmit registers an enqueue while the pool is running. The caller
// must call p.submitters.Done when the enqueue attempt is over.
func (p *Pool) beginSubmit() (<-chan struct{}, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.State() != PoolStateRunning {
		return nil, ErrPoolNotRunning
	}
	p.submitters.Add(1)
	return p.stopCh, nil
}

func (p *Pool) work(ctx context.Context, id int, drainCh <-chan struct{}) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.queue:
			p.process(ctx, id, job)
		case <-drainCh:
			// The queue is final once drainCh closes.
			for {
				select {
				case job := <-p.queue:
					p.process(ctx, id, job)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) process(ctx context.Context, id int, job Job) {
	p.busy.Add(1)
	defer p.busy.Add(-1)

	if p.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := p.run(ctx, job)

	p.processed.Add(1)
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("job failed",
			logger.Int("worker_id", id),
			logger.String("job", job.Name),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return
	}
	p.succeeded.Add(1)
	p.logger.Debug("job completed",
		logger.Int("worker_id", id),
		logger.String("job", job.Name),
		logger.Duration("duration", time.Since(start)),
	)
}

// run shields the worker from a panicking job.
func (p *Pool) run(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}

// State returns the current pool state.
func (p *Pool) State() PoolState {
	return PoolState(p.state.Load())
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	return p.State() == PoolStateRunning
}

// Stats returns pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		State:         p.State(),
		PoolSize:      p.config.PoolSize,
		BusyWorkers:   int(p.busy.Load()),
		Queued:        len(p.queue),
		JobsProcessed: p.processed.Load(),
		JobsSucceeded: p.succeeded.Load(),
		JobsFailed:    p.failed.Load(),
	}
}

// PoolStats holds statistics for the pool.
type PoolStats struct {
	State         PoolState
	PoolSize      int
	BusyWorkers   int
	Queued        int
	JobsProcessed int64
	JobsSucceeded int64
	JobsFailed    int64
}

// Utilization returns the share of busy workers as a percentage.
func (s PoolStats) Utilization() float64 {
	if s.PoolSize == 0 {
		return 0
	}
	return float64(s.BusyWorkers) / float64(s.PoolSize) * 100
}
