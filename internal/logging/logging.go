package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
	levelMu      sync.RWMutex
)

// initLevel initializes the log level from environment variables
func initLevel() {
	levelOnce.Do(func() {
		// Check DEBUG environment variable first
		if debug := os.Getenv("DEBUG"); debug != "" {
			switch strings.ToLower(debug) {
			case "1", "true", "yes", "on":
				currentLevel = LevelDebug
				return
			}
		}

		level, ok := ParseLevel(os.Getenv("LOG_LEVEL"))
		if !ok {
			// Default to Info level (no debug logs)
			level = LevelInfo
		}
		currentLevel = level
	})
}

// ParseLevel converts a level name into a LogLevel. The second return value
// is false when the name is not recognized.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// SetLevel overrides the level picked up from the environment.
// Unknown names are ignored and reported as an error.
func SetLevel(name string) error {
	level, ok := ParseLevel(name)
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}
	initLevel()
	levelMu.Lock()
	currentLevel = level
	levelMu.Unlock()
	return nil
}

// SetOutput redirects all log output to w. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	levelMu.RLock()
	defer levelMu.RUnlock()
	return currentLevel
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
