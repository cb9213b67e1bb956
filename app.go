package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"photo-pipeline/internal/catalog"
	"photo-pipeline/internal/derive"
	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/media"
	"photo-pipeline/internal/memory"
	"photo-pipeline/internal/metrics"
	"photo-pipeline/internal/pipeline"
	"photo-pipeline/internal/startup"
	"photo-pipeline/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

// app holds the services shared by the run commands for one invocation.
type app struct {
	cfg    *startup.Config
	ui     *ui
	stdout io.Writer
	stderr io.Writer

	monitor   *memory.Monitor
	collector *metrics.Collector
	server    *metrics.Server
	tracing   tracing.ShutdownFunc
}

// start brings up logging sections, memory control, metrics and tracing.
// close must be called even when start fails.
func (a *app) start(ctx context.Context) error {
	startup.PrintBanner(a.stderr)
	startup.LogSystemInfo()
	startup.LogConfig(a.cfg)
	startup.LogDirectories(a.cfg)

	mc := memory.ConfigureFromEnv()
	a.monitor = memory.NewMonitor(memory.DefaultConfig())
	a.monitor.Start()
	startup.LogMemoryConfig(mc, a.monitor.Limit())

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(a.cfg.Volumes())
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	a.collector = metrics.NewCollector(5 * time.Second)
	a.collector.Start()

	if a.cfg.MetricsAddr != "" {
		srv, err := metrics.StartServer(a.cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		a.server = srv
		startup.LogMetricsServer(srv.Addr(), metrics.NewRouter())
	}

	shutdown, err := tracing.Setup(ctx, a.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	a.tracing = shutdown
	return nil
}

// close stops everything start brought up, in reverse order.
func (a *app) close(reason string) {
	begin := time.Now()
	startup.LogShutdownInitiated(reason)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			logging.Warn("Tracing shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Spans flushed")
		}
	}
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}
	if a.collector != nil {
		a.collector.Stop()
	}
	if a.monitor != nil {
		a.monitor.Stop()
	}
	media.ShutdownVips()
	startup.LogShutdownComplete(time.Since(begin))
}

// runCatalog extracts metadata and writes the catalog file. libvips is
// optional here; without it colours are sampled with pure-Go decoding.
func (a *app) runCatalog(ctx context.Context) error {
	startup.LogRunStarted("catalog")
	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using pure-Go decoding: %v", err)
	}

	begin := time.Now()
	stop := startSpinner(a.stderr, "Extracting photo metadata...")
	n, err := catalog.NewExtractor(a.cfg.CatalogConfig(), a.cfg.Location).
		Run(ctx, a.cfg.SourceDir, a.cfg.CatalogFile)
	stop()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	a.ui.printCatalogSummary(a.stdout, n, a.cfg.CatalogFile, time.Since(begin))
	return nil
}

// runDerive generates the min and mid derivatives.
func (a *app) runDerive(ctx context.Context) error {
	startup.LogRunStarted("derive")
	transformer, err := media.NewVipsTransformer()
	startup.LogVipsInit(err)
	if err != nil {
		return fmt.Errorf("derive: %w", err)
	}

	runner := pipeline.NewRunner(
		derive.NewWorker(transformer, a.cfg.DeriveConfig()),
		a.cfg.PipelineConfig(),
		pipeline.WithReporter(pipeline.NewReporter(a.stderr)),
		pipeline.WithGate(a.monitor),
	)

	begin := time.Now()
	summary, err := runner.Run(ctx, a.cfg.SourceDir, a.cfg.MinDir, a.cfg.MidDir)
	a.ui.printRunResult(a.stdout, summary, time.Since(begin), err)
	if err != nil {
		return fmt.Errorf("derive: %w", err)
	}
	return nil
}
