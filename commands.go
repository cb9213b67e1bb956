package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/startup"

	"github.com/spf13/cobra"
)

// flagValues are the global flags. Only flags the user set override the
// loaded configuration.
type flagValues struct {
	configPath  string
	logLevel    string
	source      string
	minDir      string
	midDir      string
	catalog     string
	workers     int
	metricsAddr string
}

func newRootCmd(stdout, stderr io.Writer, ui *ui) *cobra.Command {
	var (
		flags flagValues
		a     = &app{ui: ui, stdout: stdout, stderr: stderr}
	)

	root := &cobra.Command{
		Use:   "photo-pipeline",
		Short: "Build gallery thumbnails and the photo catalog",
		Long: "photo-pipeline turns a directory of original photos into WebP derivatives\n" +
			"(min: 320px wide, mid: full size) and a JSON metadata catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	bindFlags(root, &flags)

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations["config"] == "none" {
			return nil
		}
		cfg, err := resolveConfig(cmd, flags)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	root.AddCommand(
		runCmd(a, "derive", "Generate min and mid WebP derivatives", (*app).runDerive),
		runCmd(a, "catalog", "Extract photo metadata into the catalog JSON", (*app).runCatalog),
		runCmd(a, "all", "Run catalog, then derive", func(a *app, ctx context.Context) error {
			if err := a.runCatalog(ctx); err != nil {
				return err
			}
			return a.runDerive(ctx)
		}),
		versionCmd(stdout, ui),
	)
	return root
}

func bindFlags(cmd *cobra.Command, f *flagValues) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&f.source, "source", "", "Directory of original photos")
	pf.StringVar(&f.minDir, "min-dir", "", "Output directory for thumbnails")
	pf.StringVar(&f.midDir, "mid-dir", "", "Output directory for full-size derivatives")
	pf.StringVar(&f.catalog, "catalog", "", "Catalog JSON output path")
	pf.IntVar(&f.workers, "workers", 0, "Number of concurrent conversions")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

// resolveConfig loads the configuration, applies flags the user set and
// validates the result.
func resolveConfig(cmd *cobra.Command, f flagValues) (*startup.Config, error) {
	cfg, err := startup.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("source") {
		cfg.SourceDir = f.source
	}
	if changed("min-dir") {
		cfg.MinDir = f.minDir
	}
	if changed("mid-dir") {
		cfg.MidDir = f.midDir
	}
	if changed("catalog") {
		cfg.CatalogFile = f.catalog
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runCmd wraps fn with service startup, signal handling and shutdown.
func runCmd(a *app, use, short string, fn func(*app, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reason := "run complete"
			defer func() { a.close(reason) }()

			if err := a.start(ctx); err != nil {
				reason = "startup failed"
				return err
			}

			err := fn(a, ctx)
			switch {
			case errors.Is(err, context.Canceled):
				reason = "interrupted"
			case err != nil:
				reason = "run failed"
			}
			return err
		},
	}
}

func versionCmd(w io.Writer, ui *ui) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"config": "none"},
		RunE: func(*cobra.Command, []string) error {
			info := startup.GetBuildInfo()
			_, _ = fmt.Fprintf(w, "%s %s\n", ui.title("photo-pipeline"), info.Version)
			_, _ = fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
			_, _ = fmt.Fprintf(w, "  built:      %s\n", info.BuildTime)
			_, _ = fmt.Fprintf(w, "  go:         %s %s/%s\n", info.GoVersion, info.OS, info.Arch)
			return nil
		},
	}
}
