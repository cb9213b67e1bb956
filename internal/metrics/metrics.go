package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Derivative pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_runs_total",
			Help: "Total number of derivative pipeline runs",
		},
		[]string{"status"}, // "success", "error"
	)

	PipelineLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_last_run_duration_seconds",
			Help: "Duration of the last derivative pipeline run in seconds",
		},
	)

	PipelineLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_last_run_timestamp",
			Help: "Completion time of the last derivative pipeline run",
		},
	)

	PipelineSourceFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_source_files",
			Help: "Number of recognized source images in the last run",
		},
	)

	PipelineBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_pipeline_batches_total",
			Help: "Total number of task batches submitted to the pool",
		},
	)

	PipelineBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_pipeline_batch_duration_seconds",
			Help:    "Wall time for a batch of tasks to complete",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	PipelineTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_tasks_total",
			Help: "Total number of derivative tasks by variant and outcome",
		},
		[]string{"variant", "outcome"}, // outcome: "succeeded", "skipped", "failed"
	)

	PipelineTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_pipeline_task_duration_seconds",
			Help:    "Time spent transforming and writing one derivative",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"variant"},
	)

	PipelineOutputBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_output_bytes_total",
			Help: "Bytes of encoded derivatives written by variant",
		},
		[]string{"variant"},
	)
)

// Pool metrics
var (
	PoolWorkers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_pool_workers",
			Help: "Number of live pool workers",
		},
		[]string{"pool"},
	)

	PoolInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_pool_in_flight",
			Help: "Number of tasks currently executing in the pool",
		},
		[]string{"pool"},
	)

	PoolTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_pipeline_pool_task_duration_seconds",
			Help:    "Time a pool worker spent on one item",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"pool"},
	)

	PoolWorkersReclaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_pool_workers_reclaimed_total",
			Help: "Workers torn down after the idle timeout",
		},
		[]string{"pool"},
	)
)

// Catalog metrics
var (
	CatalogEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_pipeline_catalog_entries_total",
			Help: "Total number of catalog entries extracted",
		},
	)

	CatalogErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_catalog_errors_total",
			Help: "Catalog extraction errors by stage",
		},
		[]string{"stage"}, // "stat", "decode", "exif", "colors", "write"
	)

	CatalogExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_pipeline_catalog_extraction_duration_seconds",
			Help:    "Time to extract metadata from one photo",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	CatalogLastWriteTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_catalog_last_write_timestamp",
			Help: "Time the catalog JSON was last written",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_filesystem_retry_attempts_total",
			Help: "Filesystem operation retries after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pipeline_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_pipeline_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory backpressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_memory_usage_ratio",
			Help: "Heap usage as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_memory_paused",
			Help: "1 while new batches are held back for memory pressure",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_pipeline_memory_pauses_total",
			Help: "Number of times memory pressure held back new batches",
		},
	)

	MemoryWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_pipeline_memory_wait_seconds",
			Help:    "Time a batch waited for memory pressure to clear",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60},
		},
	)
)

// Process metrics
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_app_info",
			Help: "Build information, value is always 1",
		},
		[]string{"version", "commit", "go_version"},
	)

	GoHeapAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_go_heap_alloc_bytes",
			Help: "Heap bytes allocated and in use, sampled during a run",
		},
	)

	GoGoroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_pipeline_goroutines",
			Help: "Number of goroutines, sampled during a run",
		},
	)
)
