// Package media wraps the image codecs used by the pipeline.
//
// VipsTransformer implements derive.Transformer on top of libvips (through
// govips): it decodes a source photo with EXIF auto-rotation, optionally
// resizes it to a target width and encodes it as WebP with parameters chosen
// from the source format. InitVips must be called once before use and
// ShutdownVips once at exit; libvips cannot be restarted within a process.
//
// The pure-Go helpers in image.go (DecodeConfig, LoadImageConstrained,
// LoadForAnalysis) serve catalog extraction, where a small decoded
// image.Image is needed rather than encoded bytes.
package media
