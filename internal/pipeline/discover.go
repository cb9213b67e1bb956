package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/mediatypes"
)

// Discover returns the names of recognized source images directly inside
// dir, in lexical order. Directories and unrecognized extensions are
// skipped silently; symlinks are followed.
func Discover(dir string, retry filesystem.RetryConfig) ([]string, error) {
	entries, err := filesystem.ReadDirWithRetry(dir, retry)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !mediatypes.IsSourceImage(entry.Name()) {
			continue
		}
		if !isRegularFile(dir, entry) {
			continue
		}
		names = append(names, entry.Name())
	}

	logging.Debug("Discovered %d images out of %d entries in %s", len(names), len(entries), dir)
	for derivative, sources := range derivativeCollisions(names) {
		logging.Warn("Sources %s all derive to %s; only the first written is kept, the rest are reported as skipped",
			strings.Join(sources, ", "), derivative)
	}
	return names, nil
}

// derivativeCollisions groups names whose derivatives share a file name,
// such as a.jpg and a.png. Only groups with more than one source are
// returned.
func derivativeCollisions(names []string) map[string][]string {
	byDerivative := make(map[string][]string, len(names))
	for _, name := range names {
		d := mediatypes.DerivativeName(name)
		byDerivative[d] = append(byDerivative[d], name)
	}
	for d, sources := range byDerivative {
		if len(sources) < 2 {
			delete(byDerivative, d)
		}
	}
	return byDerivative
}

func isRegularFile(dir string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		logging.Warn("Skipping unreadable symlink %s: %v", entry.Name(), err)
		return false
	}
	return info.Mode().IsRegular()
}
