package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"photo-pipeline/internal/logging"
)

// DefaultMemoryRatio is the share of the container limit given to the Go
// heap. The rest is left to libvips buffers and goroutine stacks.
const DefaultMemoryRatio = 0.70

// ConfigResult describes how GOMEMLIMIT was configured.
type ConfigResult struct {
	Configured bool

	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source string

	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO unless
// GOMEMLIMIT is already set. Call it before the first large allocation.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := ConfigResult{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return result
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT left unconfigured")
		return ConfigResult{Source: "none"}
	}

	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return ConfigResult{Source: "none"}
	}

	ratio, err := ParseRatio(os.Getenv("MEMORY_RATIO"))
	if err != nil {
		logging.Warn("%v, using default %.2f", err, DefaultMemoryRatio)
	}
	return Apply(limit, ratio)
}

// ParseRatio parses a MEMORY_RATIO value. Empty input yields the default
// without an error; invalid input yields the default and an error.
func ParseRatio(s string) (float64, error) {
	if s == "" {
		return DefaultMemoryRatio, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultMemoryRatio, fmt.Errorf("invalid MEMORY_RATIO %q", s)
	}
	if r <= 0 || r > 1 {
		return DefaultMemoryRatio, fmt.Errorf("MEMORY_RATIO %q out of range (0.0-1.0]", s)
	}
	return r, nil
}

// Apply sets GOMEMLIMIT to containerLimit*ratio.
func Apply(containerLimit int64, ratio float64) ConfigResult {
	goLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		FormatBytes(goLimit), ratio*100, FormatBytes(containerLimit))

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

// FormatBytes renders b with binary units, e.g. "1.5 MiB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
