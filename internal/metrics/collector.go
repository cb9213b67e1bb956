package metrics

import (
	"runtime"
	"sync"
	"time"

	"photo-pipeline/internal/logging"
)

// Collector periodically samples process memory and goroutine counts while a
// run is in progress. Catalog extraction may fan out one goroutine per photo,
// so these gauges are the first place to look on large directories.
type Collector struct {
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCollector creates a new runtime collector
func NewCollector(interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Collector{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop
func (c *Collector) Start() {
	c.wg.Add(1)
	go c.collectLoop()
}

// Stop stops the collection loop and waits for it to exit. Safe to call more
// than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
}

func (c *Collector) collectLoop() {
	defer c.wg.Done()

	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			c.collect()
			return
		}
	}
}

func (c *Collector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	goroutines := runtime.NumGoroutine()
	GoHeapAllocBytes.Set(float64(m.HeapAlloc))
	GoGoroutines.Set(float64(goroutines))

	logging.Debug("Runtime sampled: heap=%.1fMB goroutines=%d", float64(m.HeapAlloc)/(1024*1024), goroutines)
}
