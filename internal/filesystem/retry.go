package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"photo-pipeline/internal/logging"
)

// VolumeResolver maps file paths to known volume names for metric labeling.
// It uses longest-prefix matching on absolute paths.
type VolumeResolver struct {
	// mounts is sorted by path length descending for longest-prefix matching
	mounts []volumeMount
}

type volumeMount struct {
	path string // absolute path with trailing slash (e.g., "/photos/origin/")
	name string // volume label (e.g., "source")
}

// NewVolumeResolver creates a resolver from a map of volume name → path.
//
//	NewVolumeResolver(map[string]string{
//	    "source": cfg.SourceDir,
//	    "min":    cfg.MinDir,
//	    "mid":    cfg.MidDir,
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, path := range volumes {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if !strings.HasSuffix(absPath, "/") {
			absPath += "/"
		}
		mounts = append(mounts, volumeMount{path: absPath, name: name})
	}

	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume name for a given file path.
// Returns "unknown" if the path doesn't match any configured volume.
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}

	for _, mount := range vr.mounts {
		if strings.HasPrefix(absPath+"/", mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

// defaultResolver is the package-level resolver set at startup
var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver sets the package-level volume resolver.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}

// RetryConfig configures retry behavior for filesystem operations.
// Only ESTALE (NFS stale file handle) errors are retried; every other
// error is returned on the first attempt.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// VolumeResolver overrides the package-level resolver for this operation.
	VolumeResolver *VolumeResolver
}

// DefaultRetryConfig returns the defaults used for photo directories on NFS.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

func (c *RetryConfig) resolveVolume(path string) string {
	if c.VolumeResolver != nil {
		return c.VolumeResolver.Resolve(path)
	}
	return defaultResolver.Resolve(path)
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// withRetry runs fn until it succeeds, fails with a non-ESTALE error, or the
// retry budget is spent.
func withRetry[T any](op, path string, config RetryConfig, fn func() (T, error)) (T, error) {
	start := time.Now()
	volume := config.resolveVolume(path)
	obs := observe()
	backoff := config.InitialBackoff

	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				obs.ObserveRetrySuccess(op, volume)
			}
			obs.ObserveRetryDuration(op, volume, time.Since(start).Seconds())
			return v, nil
		}

		lastErr = err

		if !isNFSStaleError(err) {
			obs.ObserveRetryDuration(op, volume, time.Since(start).Seconds())
			return zero, err
		}

		obs.ObserveStaleError(op, volume)

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			obs.ObserveRetryAttempt(op, volume)
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	obs.ObserveRetryFailure(op, volume)
	obs.ObserveRetryDuration(op, volume, time.Since(start).Seconds())
	return zero, lastErr
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry("stat", path, config, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// OpenWithRetry performs os.Open with retry logic for NFS stale file handle errors
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	return withRetry("open", path, config, func() (*os.File, error) {
		return os.Open(path)
	})
}

// ReadDirWithRetry performs os.ReadDir with retry logic for NFS stale file handle errors
func ReadDirWithRetry(path string, config RetryConfig) ([]os.DirEntry, error) {
	return withRetry("readdir", path, config, func() ([]os.DirEntry, error) {
		return os.ReadDir(path)
	})
}

// Exists reports whether path exists. A missing path is not an error;
// any other stat failure is returned.
func Exists(path string, config RetryConfig) (bool, error) {
	_, err := StatWithRetry(path, config)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partially written file. The rename
// is retried on stale handles under config.
func WriteFileAtomic(path string, data []byte, perm os.FileMode, config RetryConfig) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.Warn("failed to remove temp file %s: %v", tmpName, rmErr)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}

	_, err = withRetry("write", path, config, func() (struct{}, error) {
		return struct{}{}, os.Rename(tmpName, path)
	})
	if err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
