package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"photo-pipeline/internal/derive"
	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/metrics"
	"photo-pipeline/internal/pool"
	"photo-pipeline/internal/workers"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBatchMultiplier sets the batch size relative to the pool size.
const DefaultBatchMultiplier = 10

// ErrSourceMissing is returned when the source directory does not exist or
// is not a directory.
var ErrSourceMissing = errors.New("source directory missing")

// Processor runs one task. *derive.Worker is the production implementation.
type Processor interface {
	Process(ctx context.Context, task derive.Task) derive.Result
}

// Scheduler runs a batch of tasks with bounded concurrency and returns one
// result per task in submission order. *pool.Pool[derive.Task, derive.Result]
// satisfies it.
type Scheduler interface {
	Submit(tasks []derive.Task) ([]derive.Result, error)
	Shutdown()
}

// SchedulerFactory builds the scheduler for one run around handler.
type SchedulerFactory func(cfg Config, handler func(derive.Task) derive.Result) Scheduler

// Config controls scheduling.
type Config struct {
	PoolSize        int
	IdleTimeout     time.Duration
	BatchMultiplier int
	DirMode         os.FileMode
	Retry           filesystem.RetryConfig
}

// DefaultConfig sizes the pool to the available CPUs.
func DefaultConfig() Config {
	return Config{
		PoolSize:        workers.ForCPU(0),
		IdleTimeout:     pool.DefaultIdleTimeout,
		BatchMultiplier: DefaultBatchMultiplier,
		DirMode:         0o755,
		Retry:           filesystem.DefaultRetryConfig(),
	}
}

// BatchSize is the number of tasks submitted at once.
func (c Config) BatchSize() int {
	return c.PoolSize * c.BatchMultiplier
}

// Runner executes derivative runs. A Runner may be reused; each Run builds
// and tears down its own scheduler.
type Runner struct {
	cfg          Config
	processor    Processor
	reporter     Reporter
	gate         Gate
	newScheduler SchedulerFactory
	tracer       trace.Tracer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithReporter sets the progress reporter. The default discards updates.
func WithReporter(r Reporter) Option {
	return func(rn *Runner) {
		if r != nil {
			rn.reporter = r
		}
	}
}

// Gate holds back the next batch, for example while memory is short.
type Gate interface {
	Wait(ctx context.Context) error
}

type openGate struct{}

func (openGate) Wait(context.Context) error { return nil }

// WithGate makes the runner wait on g before every batch.
func WithGate(g Gate) Option {
	return func(rn *Runner) {
		if g != nil {
			rn.gate = g
		}
	}
}

// WithSchedulerFactory replaces the goroutine pool, mostly for tests.
func WithSchedulerFactory(f SchedulerFactory) Option {
	return func(rn *Runner) {
		if f != nil {
			rn.newScheduler = f
		}
	}
}

// PoolScheduler is the default SchedulerFactory. Handler panics become
// Failed results.
func PoolScheduler(cfg Config, handler func(derive.Task) derive.Result) Scheduler {
	return pool.New(pool.Config{
		Size:        cfg.PoolSize,
		IdleTimeout: cfg.IdleTimeout,
		Observer:    metrics.NewPoolObserver("derive"),
	}, handler, derive.Recovered)
}

// NewRunner creates a runner that executes tasks with p. Zero fields in cfg
// take their DefaultConfig values.
func NewRunner(p Processor, cfg Config, opts ...Option) *Runner {
	def := DefaultConfig()
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = def.PoolSize
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.BatchMultiplier <= 0 {
		cfg.BatchMultiplier = def.BatchMultiplier
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = def.DirMode
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialBackoff == 0 {
		cfg.Retry = def.Retry
	}

	r := &Runner{
		cfg:          cfg,
		processor:    p,
		reporter:     nopReporter{},
		gate:         openGate{},
		newScheduler: PoolScheduler,
		tracer:       otel.Tracer("photo-pipeline/pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run generates the min and mid derivatives for every image in sourceDir.
// The returned summary is valid even when err is non-nil and reflects the
// batches that completed.
func (r *Runner) Run(ctx context.Context, sourceDir, minDir, midDir string) (summary derive.RunSummary, err error) {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("pipeline.run_id", runID),
		attribute.String("pipeline.source_dir", sourceDir),
		attribute.Int("pipeline.pool_size", r.cfg.PoolSize),
	))
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int("pipeline.total", summary.Total),
			attribute.Int("pipeline.succeeded", summary.Succeeded),
			attribute.Int("pipeline.skipped", summary.Skipped),
			attribute.Int("pipeline.failed", summary.Failed),
		)
		span.End()

		metrics.PipelineRunsTotal.WithLabelValues(status).Inc()
		metrics.PipelineLastRunDuration.Set(time.Since(start).Seconds())
		metrics.PipelineLastRunTimestamp.Set(float64(time.Now().Unix()))
	}()

	logging.Info("Starting derivative run %s (source: %s, pool: %d, batch: %d)",
		runID, sourceDir, r.cfg.PoolSize, r.cfg.BatchSize())

	if err := r.prepare(sourceDir, minDir, midDir); err != nil {
		return summary, err
	}

	names, err := Discover(sourceDir, r.cfg.Retry)
	if err != nil {
		return summary, err
	}
	metrics.PipelineSourceFiles.Set(float64(len(names)))

	if len(names) == 0 {
		logging.Info("No images found in %s", sourceDir)
		r.reporter.Finish(summary)
		return summary, nil
	}
	logging.Info("Found %d images, %d tasks", len(names), len(names)*len(derive.Variants))

	tasks := derive.ExpandTasks(sourceDir, minDir, midDir, names)
	summary.Total = len(tasks)

	sched := r.newScheduler(r.cfg, func(t derive.Task) derive.Result {
		return r.processor.Process(ctx, t)
	})
	defer sched.Shutdown()

	r.reporter.Start(summary)

	batchSize := r.cfg.BatchSize()
	for i, n := 0, 0; i < len(tasks); i, n = i+batchSize, n+1 {
		err := ctx.Err()
		if err == nil {
			err = r.gate.Wait(ctx)
		}
		if err != nil {
			logging.Warn("Run %s interrupted after %d of %d tasks", runID, summary.Processed(), summary.Total)
			return summary, fmt.Errorf("run interrupted: %w", err)
		}

		end := min(i+batchSize, len(tasks))
		results, err := r.runBatch(ctx, n, tasks[i:end], sched)
		if err != nil {
			return summary, err
		}

		for _, res := range results {
			summary.Add(res)
		}
		r.reporter.Update(summary)
	}

	r.reporter.Finish(summary)
	logging.Info("Run %s complete in %v: %s", runID, time.Since(start).Round(time.Millisecond), summary)
	return summary, nil
}

// prepare checks the source directory and creates both output directories.
func (r *Runner) prepare(sourceDir, minDir, midDir string) error {
	info, err := filesystem.StatWithRetry(sourceDir, r.cfg.Retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, sourceDir)
		}
		return fmt.Errorf("checking source directory %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, sourceDir)
	}

	for _, dir := range []string{minDir, midDir} {
		if err := os.MkdirAll(dir, r.cfg.DirMode); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	return nil
}

func (r *Runner) runBatch(ctx context.Context, n int, batch []derive.Task, sched Scheduler) ([]derive.Result, error) {
	_, span := r.tracer.Start(ctx, "pipeline.batch", trace.WithAttributes(
		attribute.Int("pipeline.batch", n),
		attribute.Int("pipeline.batch_size", len(batch)),
	))
	defer span.End()

	start := time.Now()
	results, err := sched.Submit(batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("submitting batch %d: %w", n, err)
	}
	if len(results) != len(batch) {
		err := fmt.Errorf("submitting batch %d: scheduler returned %d results for %d tasks", n, len(results), len(batch))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.PipelineBatchesTotal.Inc()
	metrics.PipelineBatchDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Batch %d: %d tasks in %v", n, len(batch), time.Since(start))
	return results, nil
}
