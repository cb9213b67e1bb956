package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/metrics"
)

// Config holds the monitor thresholds.
type Config struct {
	// LimitBytes is the budget; 0 uses GOMEMLIMIT, and no limit disables
	// the monitor.
	LimitBytes int64

	// HighWaterMark is the usage ratio below which a paused monitor resumes.
	HighWaterMark float64

	// CriticalWaterMark is the usage ratio at which batches are held back.
	CriticalWaterMark float64

	CheckInterval time.Duration
}

// DefaultConfig returns the thresholds used by the CLI.
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     time.Second,
	}
}

// Monitor samples heap usage and holds back new batches while usage is
// critical.
type Monitor struct {
	cfg    Config
	limit  int64
	sample func() uint64

	mu      sync.Mutex
	current uint64
	paused  bool
	resume  chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// NewMonitor creates a monitor. Call Start to begin sampling.
func NewMonitor(cfg Config) *Monitor {
	def := DefaultConfig()
	if cfg.HighWaterMark <= 0 || cfg.HighWaterMark >= 1 {
		cfg.HighWaterMark = def.HighWaterMark
	}
	if cfg.CriticalWaterMark <= cfg.HighWaterMark || cfg.CriticalWaterMark > 1 {
		cfg.CriticalWaterMark = max(def.CriticalWaterMark, cfg.HighWaterMark)
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = def.CheckInterval
	}

	limit := cfg.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < 1<<62 {
			limit = l
		}
	}

	return &Monitor{
		cfg:    cfg,
		limit:  limit,
		sample: heapAlloc,
		resume: make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

// Limit returns the budget in bytes, or 0 when the monitor is inactive.
func (m *Monitor) Limit() int64 {
	return m.limit
}

// Start begins periodic sampling. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		logging.Debug("Memory monitor inactive: no limit configured")
		return
	}
	logging.Debug("Memory monitor started (limit %s, critical at %.0f%%)",
		FormatBytes(m.limit), m.cfg.CriticalWaterMark*100)

	go func() {
		ticker := time.NewTicker(m.cfg.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends sampling and releases any waiters. It is safe to call twice.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Monitor) check() {
	current := m.sample()
	usage := float64(current) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = current

	switch {
	case !m.paused && usage >= m.cfg.CriticalWaterMark:
		logging.Warn("Memory critical (%.1f%% of %s), holding back new batches", usage*100, FormatBytes(m.limit))
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPausesTotal.Inc()
		go runtime.GC()
	case m.paused && usage < m.cfg.HighWaterMark:
		logging.Info("Memory recovered (%.1f%% of limit), resuming", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// Paused reports whether new work is currently held back.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Usage returns the last sampled usage ratio, or 0 without a limit.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.current) / float64(m.limit)
}

// Wait blocks while the monitor is paused. It returns ctx.Err() if ctx ends
// first and nil once work may proceed or the monitor is stopped.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resume := m.resume
	m.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.MemoryWaitDuration.Observe(time.Since(start).Seconds())
	}()

	select {
	case <-resume:
		return nil
	case <-m.stop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
