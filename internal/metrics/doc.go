// Package metrics provides Prometheus instrumentation for the photo pipeline.
//
// All metrics are prefixed with "photo_pipeline_".
//
// # Metric Categories
//
// ## Pipeline Metrics
//
//   - PipelineRunsTotal: runs by status (success/error)
//   - PipelineLastRunDuration, PipelineLastRunTimestamp
//   - PipelineSourceFiles: recognized source images in the last run
//   - PipelineBatchesTotal, PipelineBatchDuration
//   - PipelineTasksTotal: tasks by variant (min/mid) and outcome
//     (succeeded/skipped/failed)
//   - PipelineTaskDuration: transform + write time by variant
//   - PipelineOutputBytes: encoded bytes written by variant
//
// ## Pool Metrics
//
// Labelled by pool name ("derive" or "catalog"), fed through
// NewPoolObserver:
//   - PoolWorkers, PoolInFlight, PoolTaskDuration, PoolWorkersReclaimed
//
// ## Catalog Metrics
//
//   - CatalogEntriesTotal, CatalogErrorsTotal (by stage),
//     CatalogExtractionDuration, CatalogLastWriteTimestamp
//
// ## Filesystem Metrics
//
// NFS stale-handle retry counters labelled by operation and volume, fed
// through NewFilesystemObserver.
//
// ## Memory Metrics
//
//   - MemoryUsageRatio, MemoryPaused, MemoryPausesTotal, MemoryWaitDuration
//     (updated by the memory monitor gating batches)
//
// ## Process Metrics
//
//   - AppInfo, GoHeapAllocBytes, GoGoroutines (sampled by Collector)
//
// # Exposition
//
// The CLI is short-lived, so metrics are only scrapeable while a run is in
// progress: StartServer serves /metrics on the configured address and the
// command shuts it down when the run ends. Requests are access-logged at
// debug level.
package metrics
