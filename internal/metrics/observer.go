package metrics

import (
	"time"

	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/pool"
)

// filesystemObserver implements filesystem.Observer using the Prometheus
// metrics declared in this package.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer that records filesystem retry
// metrics into the counters and histograms declared in metrics.go.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveRetryAttempt(retryOp, volume string) {
	FilesystemRetryAttempts.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(retryOp, volume string) {
	FilesystemRetrySuccess.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(retryOp, volume string) {
	FilesystemRetryFailures.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryDuration(retryOp, volume string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(retryOp, volume).Observe(durationSeconds)
}

func (o *filesystemObserver) ObserveStaleError(retryOp, volume string) {
	FilesystemStaleErrors.WithLabelValues(retryOp, volume).Inc()
}

// poolObserver implements pool.Observer for one named pool.
type poolObserver struct {
	name string
}

// NewPoolObserver creates an observer that tracks the worker and in-flight
// gauges of the pool labelled name.
func NewPoolObserver(name string) pool.Observer {
	return &poolObserver{name: name}
}

func (o *poolObserver) WorkerStarted() {
	PoolWorkers.WithLabelValues(o.name).Inc()
}

func (o *poolObserver) WorkerStopped(idle bool) {
	PoolWorkers.WithLabelValues(o.name).Dec()
	if idle {
		PoolWorkersReclaimed.WithLabelValues(o.name).Inc()
	}
}

func (o *poolObserver) TaskStarted() {
	PoolInFlight.WithLabelValues(o.name).Inc()
}

func (o *poolObserver) TaskFinished(d time.Duration) {
	PoolInFlight.WithLabelValues(o.name).Dec()
	PoolTaskDuration.WithLabelValues(o.name).Observe(d.Seconds())
}
