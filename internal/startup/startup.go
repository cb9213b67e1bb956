package startup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/memory"
	"photo-pipeline/internal/mediatypes"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
}

const rule = "------------------------------------------------------------"

func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

// PrintBanner writes the banner to w and logs the build information.
func PrintBanner(w io.Writer) {
	banner := `
------------------------------------------------------------
          __          __                   _            ___
   ____  / /_  ____  / /_____        ____  (_)___  ___  / (_)___  ___
  / __ \/ __ \/ __ \/ __/ __ \______/ __ \/ / __ \/ _ \/ / / __ \/ _ \
 / /_/ / / / / /_/ / /_/ /_/ /_____/ /_/ / / /_/ /  __/ / / / / /  __/
/ .___/_/ /_/\____/\__/\____/     / .___/_/ .___/\___/_/_/_/ /_/\___/
/_/                              /_/     /_/
------------------------------------------------------------`
	_, _ = fmt.Fprintln(w, banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

// LogSystemInfo logs the runtime environment.
func LogSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}
}

// LogConfig logs the resolved configuration.
func LogConfig(cfg *Config) {
	section("CONFIGURATION")
	logging.Info("  SOURCE_DIR:           %s", cfg.SourceDir)
	logging.Info("  MIN_DIR:              %s", cfg.MinDir)
	logging.Info("  MID_DIR:              %s", cfg.MidDir)
	logging.Info("  CATALOG_FILE:         %s", cfg.CatalogFile)
	logging.Info("  PIPELINE_WORKERS:     %d", cfg.Workers)
	logging.Info("  IDLE_TIMEOUT:         %v", cfg.IdleTimeout)
	logging.Info("  BATCH_MULTIPLIER:     %d (batch size %d)", cfg.BatchMultiplier, cfg.Workers*cfg.BatchMultiplier)
	logging.Info("  THUMBNAIL_WIDTH:      %d", cfg.ThumbnailWidth)
	logging.Info("  QUALITY:              %d", cfg.Quality)
	if cfg.CatalogConcurrency == 0 {
		logging.Info("  CATALOG_CONCURRENCY:  unbounded")
	} else {
		logging.Info("  CATALOG_CONCURRENCY:  %d", cfg.CatalogConcurrency)
	}
	logging.Info("  METRICS_ADDR:         %s", valueOr(cfg.MetricsAddr, "DISABLED"))
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())
	logging.Info("  TRACING:              %s", enabledString(cfg.Tracing.Enabled))
}

// LogDirectories logs the absolute paths and checks the source directory.
// Problems are warnings here; the run itself fails on a missing source.
func LogDirectories(cfg *Config) {
	section("DIRECTORY SETUP")

	for _, d := range []struct{ name, path string }{
		{"Source", cfg.SourceDir},
		{"Min output", cfg.MinDir},
		{"Mid output", cfg.MidDir},
		{"Catalog", cfg.CatalogFile},
	} {
		abs, err := filepath.Abs(d.path)
		if err != nil {
			abs = d.path
		}
		logging.Info("  %-11s %s", d.name+":", abs)
	}

	entries, err := os.ReadDir(cfg.SourceDir)
	if err != nil {
		logging.Warn("  Source directory issue: %v", err)
		return
	}
	images, other := 0, 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if mediatypes.IsSourceImage(e.Name()) {
			images++
		} else {
			other++
		}
	}
	logging.Info("  [OK] Source contains %d images (%d other files ignored)", images, other)
}

// LogVipsInit logs the libvips startup result.
func LogVipsInit(err error) {
	section("IMAGE CODEC INITIALIZATION")
	if err != nil {
		logging.Error("  libvips failed to start: %v", err)
		return
	}
	logging.Info("  [OK] libvips ready")
}

// LogMemoryConfig logs how GOMEMLIMIT was configured.
func LogMemoryConfig(mc memory.ConfigResult, monitorLimit int64) {
	section("MEMORY")
	switch {
	case !mc.Configured:
		logging.Info("  GOMEMLIMIT: not configured")
	case mc.Source == "MEMORY_LIMIT":
		logging.Info("  GOMEMLIMIT: %s (%.0f%% of %s)",
			memory.FormatBytes(mc.GoMemLimit), mc.Ratio*100, memory.FormatBytes(mc.ContainerLimit))
	default:
		logging.Info("  GOMEMLIMIT: %s (from environment)", memory.FormatBytes(mc.GoMemLimit))
	}
	if monitorLimit > 0 {
		logging.Info("  Backpressure: ENABLED (limit %s)", memory.FormatBytes(monitorLimit))
	} else {
		logging.Info("  Backpressure: DISABLED")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: pathTemplate})
		}
		return nil
	})

	return routes, err
}

// LogMetricsServer logs the metrics endpoint and, at debug level, its routes.
func LogMetricsServer(addr string, router *mux.Router) {
	section("METRICS SERVER")
	logging.Info("  Listening on:  http://%s", addr)

	if !logging.IsDebugEnabled() || router == nil {
		return
	}
	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
	for _, r := range routes {
		logging.Debug("    %-6s %s", r.Method, r.Path)
	}
}

// LogRunStarted opens the section for a command's work.
func LogRunStarted(command string) {
	section(fmt.Sprintf("RUN: %s", command))
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(reason string) {
	section(fmt.Sprintf("SHUTDOWN INITIATED (%s)", reason))
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete(elapsed time.Duration) {
	logging.Info("  [OK] Shutdown complete (total time %v)", elapsed.Round(time.Millisecond))
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
