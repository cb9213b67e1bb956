/*
Package filesystem provides filesystem operations used by the photo pipeline:
stat, open and readdir calls that retry on NFS stale file handle errors, and an
atomic write that never leaves a half-written derivative or catalog behind.

# Retry Behavior

Only ESTALE (errno 116 on Linux) is retried, with exponential backoff capped at
MaxBackoff. Every other error, including "not exist", is returned immediately,
so the idempotence check in the derivative worker costs a single stat.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

# Atomic Writes

WriteFileAtomic writes into a hidden temporary file in the destination
directory and renames it over the target. An interrupted run therefore leaves
either no destination file or a complete one, which keeps "destination exists"
a reliable skip signal on the next run.

# Metrics

Retry counters are reported through an Observer set with SetObserver. The
metrics package provides the Prometheus implementation; tests run with the
default no-op observer.
*/
package filesystem
