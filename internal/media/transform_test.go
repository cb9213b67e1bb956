package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"photo-pipeline/internal/derive"
	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/mediatypes"
	"photo-pipeline/internal/pipeline"
)

func TestWebpParams(t *testing.T) {
	tests := []struct {
		name          string
		spec          derive.TransformSpec
		wantQuality   int
		wantEffort    int
		wantStripMeta bool
	}{
		{"min jpeg", derive.TransformSpec{Variant: derive.VariantMin, Width: 320, Quality: 80, SourceFormat: mediatypes.FormatJPEG}, 80, 4, false},
		{"mid png", derive.TransformSpec{Variant: derive.VariantMid, Quality: 80, SourceFormat: mediatypes.FormatPNG}, 80, maxReductionEffort, false},
		{"mid jpeg", derive.TransformSpec{Variant: derive.VariantMid, Quality: 80, SourceFormat: mediatypes.FormatJPEG}, 80, 4, true},
		{"mid webp", derive.TransformSpec{Variant: derive.VariantMid, Quality: 70, SourceFormat: mediatypes.FormatWebP}, 70, 4, false},
		{"mid gif", derive.TransformSpec{Variant: derive.VariantMid, Quality: 80, SourceFormat: mediatypes.FormatGIF}, 80, 4, false},
		{"mid tiff", derive.TransformSpec{Variant: derive.VariantMid, Quality: 80, SourceFormat: mediatypes.FormatTIFF}, 80, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := WebpParams(tt.spec)
			if p.Quality != tt.wantQuality {
				t.Errorf("Quality = %d, want %d", p.Quality, tt.wantQuality)
			}
			if p.ReductionEffort != tt.wantEffort {
				t.Errorf("ReductionEffort = %d, want %d", p.ReductionEffort, tt.wantEffort)
			}
			if p.StripMetadata != tt.wantStripMeta {
				t.Errorf("StripMetadata = %v, want %v", p.StripMetadata, tt.wantStripMeta)
			}
		})
	}
}

func TestWebpParamsUnknownFormatUsesDefaults(t *testing.T) {
	p := WebpParams(derive.TransformSpec{Variant: derive.VariantMid, Quality: 10, SourceFormat: mediatypes.FormatUnknown})
	if p.Quality == 10 {
		t.Error("unknown formats should keep the libvips default quality")
	}
}

func requireVips(t *testing.T) *VipsTransformer {
	t.Helper()
	tr, err := NewVipsTransformer()
	if err != nil || !IsVipsAvailable() {
		t.Skip("libvips not available in test environment")
	}
	return tr
}

func TestVipsTransformerMin(t *testing.T) {
	tr := requireVips(t)
	path := filepath.Join(t.TempDir(), "wide.jpg")
	createTestImage(t, path, 1600, 900, "jpeg")

	data, err := tr.Transform(context.Background(), path, derive.TransformSpec{
		Variant: derive.VariantMin, Width: 320, Quality: 80, SourceFormat: mediatypes.FormatJPEG,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "wide.webp")
	if err := filesystem.WriteFileAtomic(out, data, 0o644, filesystem.DefaultRetryConfig()); err != nil {
		t.Fatal(err)
	}
	cfg, err := DecodeConfig(out, filesystem.DefaultRetryConfig())
	if err != nil {
		t.Fatalf("output is not decodable: %v", err)
	}
	if cfg.Format != "webp" || cfg.Width != 320 || cfg.Height != 180 {
		t.Errorf("output = %s %dx%d, want webp 320x180", cfg.Format, cfg.Width, cfg.Height)
	}
}

func TestVipsTransformerErrors(t *testing.T) {
	tr := requireVips(t)

	if _, err := tr.Transform(context.Background(), "/nonexistent/photo.jpg", derive.TransformSpec{Variant: derive.VariantMid, Quality: 80}); err == nil {
		t.Error("Transform() of a missing file returned nil error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Transform(ctx, "/nonexistent/photo.jpg", derive.TransformSpec{}); err != context.Canceled {
		t.Errorf("Transform() with cancelled context error = %v", err)
	}
}

// TestDerivativeRunScenario drives the real codec through the pipeline:
// one 4000x3000 JPEG and one 800x600 PNG give four derivatives, and a
// second run skips all of them.
func TestDerivativeRunScenario(t *testing.T) {
	tr := requireVips(t)

	root := t.TempDir()
	src := filepath.Join(root, "origin")
	minDir := filepath.Join(root, "min")
	midDir := filepath.Join(root, "mid")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	createTestImage(t, filepath.Join(src, "large.jpg"), 4000, 3000, "jpeg")
	createTestImage(t, filepath.Join(src, "small.png"), 800, 600, "png")

	runner := pipeline.NewRunner(derive.NewWorker(tr, derive.DefaultConfig()), pipeline.Config{PoolSize: 2})

	first, err := runner.Run(context.Background(), src, minDir, midDir)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if want := (derive.RunSummary{Total: 4, Succeeded: 4}); first != want {
		t.Fatalf("first run = %+v, want %+v", first, want)
	}

	retry := filesystem.DefaultRetryConfig()
	originals := map[string][2]int{"large": {4000, 3000}, "small": {800, 600}}
	for name, dims := range originals {
		minCfg, err := DecodeConfig(filepath.Join(minDir, name+".webp"), retry)
		if err != nil {
			t.Fatalf("min/%s.webp: %v", name, err)
		}
		if minCfg.Format != "webp" || minCfg.Width > 320 {
			t.Errorf("min/%s.webp = %s %dx%d, want webp at most 320 wide", name, minCfg.Format, minCfg.Width, minCfg.Height)
		}

		midCfg, err := DecodeConfig(filepath.Join(midDir, name+".webp"), retry)
		if err != nil {
			t.Fatalf("mid/%s.webp: %v", name, err)
		}
		if midCfg.Format != "webp" || midCfg.Width*dims[1] != midCfg.Height*dims[0] {
			t.Errorf("mid/%s.webp = %s %dx%d, want webp at %d:%d", name, midCfg.Format, midCfg.Width, midCfg.Height, dims[0], dims[1])
		}
	}

	second, err := runner.Run(context.Background(), src, minDir, midDir)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if want := (derive.RunSummary{Total: 4, Skipped: 4}); second != want {
		t.Errorf("second run = %+v, want %+v", second, want)
	}
}
