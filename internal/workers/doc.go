/*
Package workers determines worker pool sizes in containerized environments.

The derivative pipeline sizes its pool to the number of available processing
units. runtime.NumCPU reports the host CPU count even inside a CPU-limited
container, so this package reads runtime.GOMAXPROCS(0) instead, which Go 1.19+
sets from the cgroup limit:

	// one libvips encode per available CPU
	size := workers.ForCPU(0)

# Environment Variable Override

PIPELINE_WORKERS pins the count regardless of the CPU calculation. A non-numeric
or non-positive value is ignored. The limit argument still caps the override.

# Thread Safety

All functions in this package are safe for concurrent use.
*/
package workers
