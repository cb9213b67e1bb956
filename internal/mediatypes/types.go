package mediatypes

import (
	"path/filepath"
	"strings"
)

// Format identifies the encoding of a source photo.
type Format string

const (
	// FormatJPEG covers .jpg and .jpeg sources.
	FormatJPEG Format = "jpeg"
	// FormatPNG covers .png sources.
	FormatPNG Format = "png"
	// FormatWebP covers .webp sources.
	FormatWebP Format = "webp"
	// FormatGIF covers .gif sources.
	FormatGIF Format = "gif"
	// FormatTIFF covers .tiff sources.
	FormatTIFF Format = "tiff"
	// FormatUnknown is returned for anything outside the allow-list.
	FormatUnknown Format = "unknown"
)

// DerivativeExt is the extension every derivative file is written with.
const DerivativeExt = ".webp"

// SourceExtensions maps lowercase extensions to the source format they carry.
// Only files with these extensions are picked up from the source directory.
var SourceExtensions = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWebP,
	".gif":  FormatGIF,
	".tiff": FormatTIFF,
}

// FormatFromName returns the source format for a file name or path.
// The extension match is case-insensitive.
func FormatFromName(name string) Format {
	if f, ok := SourceExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	return FormatUnknown
}

// IsSourceImage reports whether name has an allow-listed image extension.
func IsSourceImage(name string) bool {
	return FormatFromName(name) != FormatUnknown
}

// DerivativeName returns the file name a derivative of name is written to:
// the base name with its extension replaced by .webp.
func DerivativeName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + DerivativeExt
}
