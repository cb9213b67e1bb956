package media

import (
	"fmt"
	"image"
	"math"

	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// MaxImageDimension is the maximum width or height decoded at full size
	// by the pure-Go fallback.
	MaxImageDimension = 4096

	// MaxImagePixels bounds the pure-Go fallback; ~20MP is ~80MB in RGBA.
	MaxImagePixels = 20_000_000
)

// ImageConfig holds the dimensions and codec name of an image.
type ImageConfig struct {
	Width  int
	Height int
	Format string
}

// DecodeConfig reads only the image header.
func DecodeConfig(path string, retry filesystem.RetryConfig) (*ImageConfig, error) {
	file, err := filesystem.OpenWithRetry(path, retry)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &ImageConfig{
		Width:  config.Width,
		Height: config.Height,
		Format: format,
	}, nil
}

// LoadImageConstrained decodes path with EXIF auto-orientation, downscaling
// when it exceeds maxDimension on either side or maxPixels in total.
func LoadImageConstrained(path string, maxDimension, maxPixels int) (image.Image, error) {
	cfg, err := DecodeConfig(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Debug("Could not read image header for %s: %v, decoding without constraints", path, err)
		return imaging.Open(path, imaging.AutoOrientation(true))
	}

	width, height := cfg.Width, cfg.Height
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return imaging.Open(path, imaging.AutoOrientation(true))
	}

	targetWidth, targetHeight := width, height
	if width > maxDimension || height > maxDimension {
		if width > height {
			targetWidth = maxDimension
			targetHeight = height * maxDimension / width
		} else {
			targetHeight = maxDimension
			targetWidth = width * maxDimension / height
		}
	}

	if targetPixels := targetWidth * targetHeight; targetPixels > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(targetPixels))
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	logging.Debug("Constraining large image %s from %dx%d to %dx%d", path, width, height, targetWidth, targetHeight)

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos), nil
}

// LoadForAnalysis returns an auto-oriented copy of path scaled to width
// pixels wide. libvips is used when available since it shrinks during
// decode; otherwise the image is decoded in Go under the usual limits.
func LoadForAnalysis(path string, width int) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := LoadImageWithVips(path, width, width*MaxImageDimension)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips preview failed for %s, falling back: %v", path, err)
	}

	img, err := LoadImageConstrained(path, MaxImageDimension, MaxImagePixels)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, width, 0, imaging.Box), nil
}
