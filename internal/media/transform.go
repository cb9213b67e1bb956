package media

import (
	"context"
	"fmt"
	"path/filepath"

	"photo-pipeline/internal/derive"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/mediatypes"

	"github.com/davidbyttow/govips/v2/vips"
)

// maxReductionEffort is the slowest, smallest libwebp setting.
const maxReductionEffort = 6

// VipsTransformer encodes WebP derivatives with libvips.
type VipsTransformer struct{}

// NewVipsTransformer initializes libvips if needed and returns a transformer.
func NewVipsTransformer() (*VipsTransformer, error) {
	if err := InitVips(); err != nil {
		return nil, err
	}
	return &VipsTransformer{}, nil
}

// Transform decodes sourcePath, applies EXIF orientation, resizes to
// spec.Width when set and returns the WebP encoding.
func (t *VipsTransformer) Transform(ctx context.Context, sourcePath string, spec derive.TransformSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	ref, err := vips.LoadImageFromFile(sourcePath, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(sourcePath), err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, fmt.Errorf("auto-rotate %s: %w", filepath.Base(sourcePath), err)
	}

	if spec.Width > 0 && ref.Width() != spec.Width {
		scale := float64(spec.Width) / float64(ref.Width())
		if err := ref.Resize(scale, vips.KernelLanczos3); err != nil {
			return nil, fmt.Errorf("resize %s to %dpx: %w", filepath.Base(sourcePath), spec.Width, err)
		}
	}

	data, _, err := ref.ExportWebp(WebpParams(spec))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", filepath.Base(sourcePath), err)
	}

	logging.Debug("Encoded %s (%s): %dx%d, %d bytes", filepath.Base(sourcePath), spec.Variant, ref.Width(), ref.Height(), len(data))
	return data, nil
}

// WebpParams returns the encoder settings for spec. MIN derivatives use the
// plain quality setting; MID derivatives tune the encoder per source format
// and fall back to libvips defaults for formats we do not recognize.
func WebpParams(spec derive.TransformSpec) *vips.WebpExportParams {
	params := vips.NewWebpExportParams()
	if spec.Variant == derive.VariantMin {
		params.Quality = spec.Quality
		return params
	}

	switch spec.SourceFormat {
	case mediatypes.FormatPNG:
		params.Quality = spec.Quality
		params.ReductionEffort = maxReductionEffort
	case mediatypes.FormatJPEG:
		params.Quality = spec.Quality
		params.StripMetadata = true
	case mediatypes.FormatWebP, mediatypes.FormatGIF, mediatypes.FormatTIFF:
		params.Quality = spec.Quality
	default:
		// libvips defaults
	}
	return params
}
