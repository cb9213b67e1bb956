package derive

import (
	"context"

	"photo-pipeline/internal/mediatypes"
)

// TransformSpec describes the derivative to produce from one source image.
type TransformSpec struct {
	Variant Variant
	// Width is the target width in pixels, height follows the aspect ratio.
	// Zero keeps the original dimensions.
	Width int
	// Quality is the WebP quality, 1-100.
	Quality int
	// SourceFormat selects format-specific encode parameters. FormatUnknown
	// means the default encoder settings.
	SourceFormat mediatypes.Format
}

// Transformer decodes sourcePath and returns the encoded derivative.
type Transformer interface {
	Transform(ctx context.Context, sourcePath string, spec TransformSpec) ([]byte, error)
}

// TransformFunc adapts a function to the Transformer interface.
type TransformFunc func(ctx context.Context, sourcePath string, spec TransformSpec) ([]byte, error)

// Transform calls f.
func (f TransformFunc) Transform(ctx context.Context, sourcePath string, spec TransformSpec) ([]byte, error) {
	return f(ctx, sourcePath, spec)
}
