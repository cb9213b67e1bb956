// Package derive turns one source photo into its web derivatives.
//
// A Task pairs a source file with a Variant: VariantMin is a fixed-width
// thumbnail and VariantMid keeps the original dimensions. Both are encoded as
// WebP into per-variant output directories, named after the source file's
// base name.
//
// Worker.Process executes one Task and always returns a Result; it never
// returns an error or panics. A destination that already exists is Skipped
// without invoking the Transformer, which makes re-running over an unchanged
// source tree a no-op. Codec and I/O failures, including panics inside the
// Transformer, become Failed results so that one bad file cannot abort a run.
//
// The codec itself is injected through the Transformer interface; the
// production implementation lives in internal/media and is backed by libvips.
package derive
