package media

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"photo-pipeline/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// VipsConfig tunes libvips at startup.
type VipsConfig struct {
	// ConcurrencyLevel is the number of threads libvips uses per operation.
	// The pipeline already runs one image per pool worker, so 1 is usual.
	ConcurrencyLevel int
	MaxCacheMem      int
	MaxCacheSize     int
}

// DefaultVipsConfig keeps libvips to one thread per image and a small
// operation cache.
func DefaultVipsConfig() VipsConfig {
	return VipsConfig{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	}
}

// InitVips starts libvips with DefaultVipsConfig. Safe to call repeatedly.
func InitVips() error {
	return InitVipsWithConfig(DefaultVipsConfig())
}

// InitVipsWithConfig starts libvips. Only the first successful call has an
// effect.
func InitVipsWithConfig(cfg VipsConfig) error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup to take effect.
	vipsLevel, handler := vipsLogBridge(logging.GetLevel())
	vips.LoggingSettings(handler, vipsLevel)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: cfg.ConcurrencyLevel,
		MaxCacheMem:      cfg.MaxCacheMem,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized (version: %s, concurrency: %d)", vips.Version, cfg.ConcurrencyLevel)
	return nil
}

// vipsLogBridge maps the application log level onto the libvips verbosity
// and returns a handler that forwards libvips messages into our logger.
// govips drops messages above the verbosity before calling the handler.
func vipsLogBridge(level logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	var threshold vips.LogLevel
	switch level {
	case logging.LevelDebug:
		threshold = vips.LogLevelInfo
	case logging.LevelInfo:
		threshold = vips.LogLevelWarning
	case logging.LevelWarn:
		threshold = vips.LogLevelError
	default:
		threshold = vips.LogLevelCritical
	}

	return threshold, func(domain string, msgLevel vips.LogLevel, msg string) {
		switch msgLevel {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}
}

// ShutdownVips releases libvips. libvips cannot be started again afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether libvips is initialized.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// LoadImageWithVips decodes path with libvips, shrinking it to fit within
// targetWidth x targetHeight during decode, and returns it as an
// auto-oriented image.Image. Much cheaper than decoding a full-size JPEG
// in Go when only a small preview is needed.
func LoadImageWithVips(path string, targetWidth, targetHeight int) (image.Image, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	ref, err := vips.NewThumbnailFromFile(path, targetWidth, targetHeight, vips.InterestingNone)
	if err != nil {
		return nil, fmt.Errorf("vips failed to load %s: %w", filepath.Base(path), err)
	}
	defer ref.Close()

	// PNG keeps the preview lossless so colour sampling sees exact values.
	data, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}

	logging.Debug("Vips preview for %s: %dx%d", filepath.Base(path), img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}
