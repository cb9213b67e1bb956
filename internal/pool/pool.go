package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"photo-pipeline/internal/logging"
)

// ErrClosed is returned by Submit after Shutdown has been called.
var ErrClosed = errors.New("pool: submit on closed pool")

// DefaultIdleTimeout is how long a worker waits for work before exiting.
const DefaultIdleTimeout = 5 * time.Second

// Config controls pool sizing.
type Config struct {
	// Size is the maximum number of handlers executing at once.
	Size int
	// IdleTimeout is how long a worker may sit without work before it exits.
	IdleTimeout time.Duration
	// Observer receives worker and task lifecycle events. May be nil.
	Observer Observer
}

// Observer receives pool lifecycle events, typically to feed metrics.
type Observer interface {
	WorkerStarted()
	// WorkerStopped reports a worker exit; idle is true when the worker was
	// reclaimed by the idle timeout rather than by Shutdown.
	WorkerStopped(idle bool)
	TaskStarted()
	TaskFinished(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) WorkerStarted()             {}
func (nopObserver) WorkerStopped(bool)         {}
func (nopObserver) TaskStarted()               {}
func (nopObserver) TaskFinished(time.Duration) {}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers      int
	InFlight     int
	PeakInFlight int
	Completed    int64
}

type job[T, R any] struct {
	item T
	out  *R
	done *sync.WaitGroup
}

// Pool runs a handler over submitted items with bounded concurrency.
type Pool[T, R any] struct {
	size        int
	idleTimeout time.Duration
	observer    Observer
	handler     func(T) R
	onPanic     func(T, any) R

	jobs chan job[T, R]

	// submitMu is read-locked for the duration of every Submit and
	// write-locked by Shutdown, so jobs is never closed under a sender.
	submitMu sync.RWMutex
	closed   bool

	mu      sync.Mutex
	workers int
	pending int

	wg sync.WaitGroup

	inFlight  atomic.Int64
	peak      atomic.Int64
	completed atomic.Int64
}

// New creates a pool. No goroutines are started until the first Submit.
// onPanic converts a recovered handler panic into a result; when nil the
// result slot is left at its zero value.
func New[T, R any](cfg Config, handler func(T) R, onPanic func(T, any) R) *Pool[T, R] {
	if cfg.Size < 1 {
		cfg.Size = 1
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	return &Pool[T, R]{
		size:        cfg.Size,
		idleTimeout: cfg.IdleTimeout,
		observer:    cfg.Observer,
		handler:     handler,
		onPanic:     onPanic,
		jobs:        make(chan job[T, R]),
	}
}

// Size returns the maximum number of concurrently executing handlers.
func (p *Pool[T, R]) Size() int {
	return p.size
}

// Submit runs every item through the handler, at most Size at a time, and
// blocks until all of them have completed. results[i] is the result for
// items[i] regardless of completion order.
func (p *Pool[T, R]) Submit(items []T) ([]R, error) {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	var done sync.WaitGroup
	done.Add(len(items))
	for i := range items {
		p.dispatch(job[T, R]{item: items[i], out: &results[i], done: &done})
	}
	done.Wait()

	return results, nil
}

// dispatch hands j to a worker, starting one if the pool is below size.
// pending stays raised until the send completes so that no worker retires
// while a sender is waiting for it.
func (p *Pool[T, R]) dispatch(j job[T, R]) {
	p.mu.Lock()
	p.pending++
	if p.workers < p.size {
		p.workers++
		p.wg.Add(1)
		go p.worker()
	}
	p.mu.Unlock()

	p.jobs <- j

	p.mu.Lock()
	p.pending--
	p.mu.Unlock()
}

func (p *Pool[T, R]) worker() {
	defer p.wg.Done()
	p.observer.WorkerStarted()

	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case j, ok := <-p.jobs:
			if !ok {
				p.mu.Lock()
				p.workers--
				p.mu.Unlock()
				p.observer.WorkerStopped(false)
				return
			}
			p.run(j)
			idle.Reset(p.idleTimeout)

		case <-idle.C:
			if p.retireIdle() {
				logging.Debug("pool: reclaimed idle worker after %v", p.idleTimeout)
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

func (p *Pool[T, R]) retireIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending > 0 {
		return false
	}
	p.workers--
	p.observer.WorkerStopped(true)
	return true
}

func (p *Pool[T, R]) run(j job[T, R]) {
	defer j.done.Done()

	start := time.Now()
	n := p.inFlight.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	p.observer.TaskStarted()

	defer func() {
		if r := recover(); r != nil {
			logging.Error("pool: handler panic: %v", r)
			if p.onPanic != nil {
				*j.out = p.onPanic(j.item, r)
			}
		}
		p.inFlight.Add(-1)
		p.completed.Add(1)
		p.observer.TaskFinished(time.Since(start))
	}()

	*j.out = p.handler(j.item)
}

// Stats returns the current worker count and in-flight counters.
func (p *Pool[T, R]) Stats() Stats {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	return Stats{
		Workers:      workers,
		InFlight:     int(p.inFlight.Load()),
		PeakInFlight: int(p.peak.Load()),
		Completed:    p.completed.Load(),
	}
}

// Shutdown waits for in-progress Submit calls, stops every worker and
// rejects further submissions. Calling it more than once is harmless.
func (p *Pool[T, R]) Shutdown() {
	p.submitMu.Lock()
	if p.closed {
		p.submitMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.submitMu.Unlock()

	p.wg.Wait()
}
