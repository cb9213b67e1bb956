// Package memory keeps derivative runs inside a container's memory budget.
//
// libvips allocates its pixel buffers outside the Go heap, so a photo run
// needs two controls:
//
//   - [ConfigureFromEnv] sets GOMEMLIMIT from the container limit, reserving
//     a share of it for libvips (MEMORY_RATIO, default 0.70).
//   - [Monitor] samples heap usage and acts as a gate between batches. When
//     usage crosses the critical mark, [Monitor.Wait] blocks the next batch
//     until usage falls back below the high mark.
//
// # Environment Variables
//
//   - GOMEMLIMIT: standard Go variable, takes precedence when set.
//   - MEMORY_LIMIT: container limit in bytes, usually from the Kubernetes
//     Downward API (resourceFieldRef limits.memory).
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap, 0 < r <= 1.
//
// # Usage
//
//	memory.ConfigureFromEnv()
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	runner := pipeline.NewRunner(worker, cfg, pipeline.WithGate(monitor))
//
// A monitor without a limit never blocks.
package memory
