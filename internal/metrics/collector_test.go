package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollectorDefaultInterval(t *testing.T) {
	c := NewCollector(0)
	if c.interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", c.interval)
	}
}

func TestCollectorSamplesRuntime(t *testing.T) {
	GoGoroutines.Set(0)
	GoHeapAllocBytes.Set(0)

	c := NewCollector(10 * time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	if got := testutil.ToFloat64(GoGoroutines); got < 1 {
		t.Errorf("GoGoroutines = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(GoHeapAllocBytes); got <= 0 {
		t.Errorf("GoHeapAllocBytes = %v, want > 0", got)
	}
}

func TestCollectorStopIsIdempotent(t *testing.T) {
	c := NewCollector(time.Hour)
	c.Start()

	done := make(chan struct{})
	go func() {
		c.Stop()
		c.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
