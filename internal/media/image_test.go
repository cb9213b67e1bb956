package media

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"photo-pipeline/internal/filesystem"
)

// createTestImage writes a gradient image so resizes are observable.
func createTestImage(t testing.TB, path string, width, height int, format string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8((x * 255) / width)
			img.Pix[i+1] = uint8((y * 255) / height)
			img.Pix[i+2] = 128
			img.Pix[i+3] = 255
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image file: %v", err)
	}
	defer f.Close()

	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(f, img)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func TestDecodeConfig(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name       string
		width      int
		height     int
		format     string
		wantFormat string
	}{
		{"small jpeg", 100, 50, "jpeg", "jpeg"},
		{"landscape png", 800, 600, "png", "png"},
		{"portrait jpeg", 300, 900, "jpeg", "jpeg"},
		{"square png", 1, 1, "png", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+"."+tt.format)
			createTestImage(t, path, tt.width, tt.height, tt.format)

			cfg, err := DecodeConfig(path, filesystem.DefaultRetryConfig())
			if err != nil {
				t.Fatalf("DecodeConfig() error = %v", err)
			}
			if cfg.Width != tt.width || cfg.Height != tt.height {
				t.Errorf("dimensions = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.width, tt.height)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.wantFormat)
			}
		})
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()
	notImage := filepath.Join(tmpDir, "notes.jpg")
	if err := os.WriteFile(notImage, []byte("definitely not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(tmpDir, "missing.jpg")},
		{"not an image", notImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeConfig(tt.path, filesystem.DefaultRetryConfig()); err == nil {
				t.Error("DecodeConfig() returned nil error")
			}
		})
	}
}

func TestLoadImageConstrained(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name         string
		width        int
		height       int
		maxDimension int
		maxPixels    int
		wantWidth    int
		wantHeight   int
	}{
		{"within limits", 200, 100, 400, 1_000_000, 200, 100},
		{"landscape over dimension", 800, 400, 400, 1_000_000, 400, 200},
		{"portrait over dimension", 300, 600, 300, 1_000_000, 150, 300},
		{"over pixel budget", 400, 400, 1000, 40_000, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".png")
			createTestImage(t, path, tt.width, tt.height, "png")

			img, err := LoadImageConstrained(path, tt.maxDimension, tt.maxPixels)
			if err != nil {
				t.Fatalf("LoadImageConstrained() error = %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestLoadForAnalysis(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "photo.jpg")
	createTestImage(t, path, 1000, 500, "jpeg")

	img, err := LoadForAnalysis(path, 200)
	if err != nil {
		t.Fatalf("LoadForAnalysis() error = %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 200 {
		t.Errorf("width = %d, want 200", b.Dx())
	}
	if b.Dy() < 98 || b.Dy() > 102 {
		t.Errorf("height = %d, want ~100", b.Dy())
	}
}

func TestImageConstants(t *testing.T) {
	if MaxImageDimension <= 0 {
		t.Errorf("MaxImageDimension = %d", MaxImageDimension)
	}
	if MaxImagePixels < MaxImageDimension {
		t.Errorf("MaxImagePixels = %d is smaller than one row", MaxImagePixels)
	}
}

func BenchmarkDecodeConfig(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.jpg")
	createTestImage(b, path, 1920, 1080, "jpeg")
	retry := filesystem.DefaultRetryConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeConfig(path, retry); err != nil {
			b.Fatal(err)
		}
	}
}
