package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/media"
	"photo-pipeline/internal/mediatypes"
	"photo-pipeline/internal/metrics"
	"photo-pipeline/internal/pipeline"
	"photo-pipeline/internal/pool"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config controls extraction.
type Config struct {
	// Concurrency bounds the number of files processed at once. Zero starts
	// one goroutine per file.
	Concurrency      int
	ColorCount       int
	ColorSampleWidth int
	Retry            filesystem.RetryConfig
}

// DefaultConfig keeps the unbounded fan-out.
func DefaultConfig() Config {
	return Config{
		Concurrency:      0,
		ColorCount:       DefaultColorCount,
		ColorSampleWidth: DefaultColorSampleWidth,
		Retry:            filesystem.DefaultRetryConfig(),
	}
}

// Extractor builds catalog entries.
type Extractor struct {
	cfg      Config
	resolver LocationResolver
	tracer   trace.Tracer
}

// NewExtractor creates an extractor. A nil resolver uses DefaultPlaceholder.
func NewExtractor(cfg Config, resolver LocationResolver) *Extractor {
	def := DefaultConfig()
	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	if cfg.ColorCount <= 0 {
		cfg.ColorCount = def.ColorCount
	}
	if cfg.ColorSampleWidth <= 0 {
		cfg.ColorSampleWidth = def.ColorSampleWidth
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialBackoff == 0 {
		cfg.Retry = def.Retry
	}
	if resolver == nil {
		resolver = DefaultPlaceholder()
	}

	return &Extractor{
		cfg:      cfg,
		resolver: resolver,
		tracer:   otel.Tracer("photo-pipeline/catalog"),
	}
}

// Run extracts every recognized image in sourceDir and writes the catalog
// to catalogPath. It returns the number of entries written. When the
// directory holds no images nothing is written.
func (e *Extractor) Run(ctx context.Context, sourceDir, catalogPath string) (int, error) {
	entries, err := e.Extract(ctx, sourceDir)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := WriteCatalog(catalogPath, entries, e.cfg.Retry); err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("write").Inc()
		return 0, err
	}
	logging.Info("Catalog with %d entries saved to %s", len(entries), catalogPath)
	return len(entries), nil
}

// Extract returns the sorted catalog entries for sourceDir. Files that
// cannot be read are logged and left out.
func (e *Extractor) Extract(ctx context.Context, sourceDir string) ([]Entry, error) {
	ctx, span := e.tracer.Start(ctx, "catalog.extract", trace.WithAttributes(
		attribute.String("catalog.source_dir", sourceDir),
		attribute.Int("catalog.concurrency", e.cfg.Concurrency),
	))
	defer span.End()

	info, err := filesystem.StatWithRetry(sourceDir, e.cfg.Retry)
	if err != nil || !info.IsDir() {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", pipeline.ErrSourceMissing, sourceDir)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	names, err := pipeline.Discover(sourceDir, e.cfg.Retry)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(names) == 0 {
		logging.Info("No supported images found in %s", sourceDir)
		return nil, nil
	}

	logging.Info("Extracting metadata from %d images...", len(names))
	results, err := e.fanOut(ctx, sourceDir, names)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		if r != nil {
			entries = append(entries, *r)
		}
	}
	SortEntries(entries)

	span.SetAttributes(
		attribute.Int("catalog.files", len(names)),
		attribute.Int("catalog.entries", len(entries)),
	)
	return entries, nil
}

// fanOut runs extractOne for every name, either one goroutine per file or
// through a bounded pool. Results keep the order of names; nil marks a
// dropped file.
func (e *Extractor) fanOut(ctx context.Context, dir string, names []string) ([]*Entry, error) {
	extract := func(name string) *Entry {
		entry, err := e.ExtractFile(ctx, dir, name)
		if err != nil {
			logging.Error("Failed to process image [%s]: %v", name, err)
			return nil
		}
		return entry
	}

	if e.cfg.Concurrency > 0 {
		p := pool.New(pool.Config{
			Size:     e.cfg.Concurrency,
			Observer: metrics.NewPoolObserver("catalog"),
		}, extract, func(name string, r any) *Entry {
			logging.Error("Failed to process image [%s]: panic: %v", name, r)
			return nil
		})
		defer p.Shutdown()
		return p.Submit(names)
	}

	results := make([]*Entry, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Failed to process image [%s]: panic: %v", name, r)
				}
			}()
			results[i] = extract(name)
		}(i, name)
	}
	wg.Wait()
	return results, nil
}

// ExtractFile builds the entry for dir/name. Only stat and header decoding
// failures are returned; EXIF, colour and location problems leave the
// corresponding fields empty.
func (e *Extractor) ExtractFile(ctx context.Context, dir, name string) (*Entry, error) {
	ctx, span := e.tracer.Start(ctx, "catalog.file", trace.WithAttributes(attribute.String("catalog.file", name)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.CatalogExtractionDuration.Observe(time.Since(start).Seconds())
	}()

	path := filepath.Join(dir, name)
	ext := strings.ToLower(filepath.Ext(name))

	info, err := filesystem.StatWithRetry(path, e.cfg.Retry)
	if err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("stat").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("stat: %w", err)
	}

	cfg, err := media.DecodeConfig(path, e.cfg.Retry)
	if err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("decode").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decode header: %w", err)
	}

	entry := &Entry{
		FileName:   strings.TrimSuffix(name, filepath.Ext(name)),
		FileExt:    strings.TrimPrefix(ext, "."),
		FullName:   name,
		Dimensions: Dimensions{Width: cfg.Width, Height: cfg.Height},
		FileSize:   info.Size(),
		Metadata:   Metadata{Format: cfg.Format},
		Colors:     []string{},
	}

	fields, err := e.exifFor(path)
	if err != nil {
		if carriesEXIF(name) {
			metrics.CatalogErrorsTotal.WithLabelValues("exif").Inc()
		}
		logging.Debug("No EXIF for %s: %v", name, err)
	}
	entry.Camera = fields.Camera
	entry.Exposure = fields.Exposure
	entry.DateTime = fields.DateTime
	entry.GPS = fields.GPS
	entry.Metadata.Orientation = fields.Orientation

	if img, err := media.LoadForAnalysis(path, e.cfg.ColorSampleWidth); err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("colors").Inc()
		logging.Warn("Failed to extract colors [%s]: %v", name, err)
	} else {
		entry.Colors = DominantColors(img, e.cfg.ColorCount)
	}

	if entry.GPS != nil {
		loc, err := e.resolver.Resolve(ctx, *entry.GPS)
		if err != nil {
			logging.Warn("Failed to resolve location [%s]: %v", name, err)
		} else {
			entry.Location = loc
		}
	}

	metrics.CatalogEntriesTotal.Inc()
	return entry, nil
}

func (e *Extractor) exifFor(path string) (exifFields, error) {
	f, err := filesystem.OpenWithRetry(path, e.cfg.Retry)
	if err != nil {
		return exifFields{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()
	return readEXIF(f)
}

// carriesEXIF reports whether a missing EXIF block is worth counting as an
// error for this file type.
func carriesEXIF(name string) bool {
	switch mediatypes.FormatFromName(name) {
	case mediatypes.FormatJPEG, mediatypes.FormatTIFF:
		return true
	}
	return false
}

// WriteCatalog writes entries as a 2-space indented JSON array, replacing
// path atomically. The parent directory is created if needed.
func WriteCatalog(path string, entries []Entry, retry filesystem.RetryConfig) error {
	if entries == nil {
		entries = []Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	if err := filesystem.WriteFileAtomic(path, buf.Bytes(), 0o644, retry); err != nil {
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}

	metrics.CatalogLastWriteTimestamp.Set(float64(time.Now().Unix()))
	return nil
}
