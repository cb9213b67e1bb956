package derive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/mediatypes"
	"photo-pipeline/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultThumbnailWidth is the MIN variant width in pixels.
	DefaultThumbnailWidth = 320
	// DefaultQuality is the encode quality for both variants.
	DefaultQuality = 80
)

// ErrEmptyOutput is reported when a transformer returns no bytes.
var ErrEmptyOutput = errors.New("transformer returned empty output")

// Config holds the encode settings shared by every task of a run.
type Config struct {
	ThumbnailWidth int
	Quality        int
	FileMode       os.FileMode
	Retry          filesystem.RetryConfig
}

// DefaultConfig returns the standard derivative settings.
func DefaultConfig() Config {
	return Config{
		ThumbnailWidth: DefaultThumbnailWidth,
		Quality:        DefaultQuality,
		FileMode:       0o644,
		Retry:          filesystem.DefaultRetryConfig(),
	}
}

// Worker executes derive tasks. It holds no per-task state and is safe for
// concurrent use.
type Worker struct {
	transformer Transformer
	cfg         Config
	tracer      trace.Tracer
}

// NewWorker creates a worker that encodes through t. Zero fields in cfg take
// their DefaultConfig values.
func NewWorker(t Transformer, cfg Config) *Worker {
	def := DefaultConfig()
	if cfg.ThumbnailWidth <= 0 {
		cfg.ThumbnailWidth = def.ThumbnailWidth
	}
	if cfg.Quality <= 0 {
		cfg.Quality = def.Quality
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = def.FileMode
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialBackoff == 0 {
		cfg.Retry = def.Retry
	}

	return &Worker{
		transformer: t,
		cfg:         cfg,
		tracer:      otel.Tracer("photo-pipeline/derive"),
	}
}

// Spec returns the transform parameters for task.
func (w *Worker) Spec(task Task) TransformSpec {
	spec := TransformSpec{
		Variant:      task.Variant,
		Quality:      w.cfg.Quality,
		SourceFormat: mediatypes.FormatFromName(task.SourcePath),
	}
	if task.Variant == VariantMin {
		spec.Width = w.cfg.ThumbnailWidth
	}
	return spec
}

// Process runs one task to completion and returns exactly one Result.
func (w *Worker) Process(ctx context.Context, task Task) Result {
	ctx, span := w.tracer.Start(ctx, "derive.task", trace.WithAttributes(
		attribute.String("derive.file", task.File()),
		attribute.String("derive.variant", string(task.Variant)),
	))
	defer span.End()

	start := time.Now()
	result := w.process(ctx, task)
	result.Duration = time.Since(start)

	span.SetAttributes(attribute.String("derive.outcome", string(result.Outcome)))
	switch result.Outcome {
	case OutcomeFailed:
		span.SetStatus(codes.Error, result.Error)
		logging.Error("Failed to process %s (%s): %s", result.File, result.Variant, result.Error)
	case OutcomeSkipped:
		logging.Debug("Skipped %s (%s): destination exists", result.File, result.Variant)
	default:
		metrics.PipelineTaskDuration.WithLabelValues(string(task.Variant)).Observe(result.Duration.Seconds())
		metrics.PipelineOutputBytes.WithLabelValues(string(task.Variant)).Add(float64(result.Bytes))
		logging.Debug("Wrote %s (%s, %d bytes, %v)", task.Destination(), result.Variant, result.Bytes, result.Duration)
	}
	metrics.PipelineTasksTotal.WithLabelValues(string(task.Variant), string(result.Outcome)).Inc()

	return result
}

func (w *Worker) process(ctx context.Context, task Task) Result {
	dest := task.Destination()

	exists, err := filesystem.Exists(dest, w.cfg.Retry)
	if err != nil {
		return Failed(task, fmt.Errorf("checking destination: %w", err))
	}
	if exists {
		return Skipped(task)
	}

	spec := w.Spec(task)
	if task.Variant == VariantMid && spec.SourceFormat == mediatypes.FormatUnknown {
		logging.Warn("Unrecognized format for %s, using default encode settings", task.File())
	}

	data, err := w.transform(ctx, task, spec)
	if err != nil {
		return Failed(task, err)
	}
	if len(data) == 0 {
		return Failed(task, ErrEmptyOutput)
	}

	if err := filesystem.WriteFileAtomic(dest, data, w.cfg.FileMode, w.cfg.Retry); err != nil {
		return Failed(task, fmt.Errorf("writing %s: %w", dest, err))
	}

	return Succeeded(task, len(data))
}

// transform calls the transformer, converting a panic into an error.
func (w *Worker) transform(ctx context.Context, task Task, spec TransformSpec) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("transform panic: %v", r)
		}
	}()
	return w.transformer.Transform(ctx, task.SourcePath, spec)
}
