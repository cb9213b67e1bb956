package startup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/memory"
	"photo-pipeline/internal/metrics"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Errorf("Expected OS/Arch to be set, got %q/%q", info.OS, info.Arch)
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetRoutes(t *testing.T) {
	routes, err := GetRoutes(metrics.NewRouter())
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}

	want := map[string]bool{"GET /metrics": false, "GET /healthz": false}
	for _, r := range routes {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("route %s not found in %v", key, routes)
		}
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), "----") {
		t.Errorf("banner missing rule:\n%s", buf.String())
	}
}

func TestLogDirectories(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(nil)

	src := t.TempDir()
	for _, name := range []string{"a.jpg", "b.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(src, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := DefaultConfig()
	cfg.SourceDir = src
	LogDirectories(&cfg)

	if !strings.Contains(buf.String(), "Source contains 2 images (1 other files ignored)") {
		t.Errorf("unexpected directory log:\n%s", buf.String())
	}

	buf.Reset()
	cfg.SourceDir = filepath.Join(src, "missing")
	LogDirectories(&cfg)
	if !strings.Contains(buf.String(), "Source directory issue") {
		t.Errorf("missing source not reported:\n%s", buf.String())
	}
}

func TestLifecycleLogging(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(nil)

	cfg := DefaultConfig()
	LogSystemInfo()
	LogConfig(&cfg)
	LogVipsInit(nil)
	LogVipsInit(errors.New("no libvips"))
	LogMemoryConfig(memory.ConfigResult{}, 0)
	LogMemoryConfig(memory.ConfigResult{Configured: true, Source: "MEMORY_LIMIT", ContainerLimit: 1 << 30, GoMemLimit: 1 << 29, Ratio: 0.5}, 1<<29)
	LogMetricsServer("127.0.0.1:9090", metrics.NewRouter())
	LogRunStarted("derive")
	LogShutdownInitiated("interrupt")
	LogShutdownStepComplete("Metrics server stopped")
	LogShutdownComplete(0)

	out := buf.String()
	for _, want := range []string{
		"SYSTEM INFORMATION",
		"CONFIGURATION",
		"CATALOG_CONCURRENCY:  unbounded",
		"METRICS_ADDR:         DISABLED",
		"libvips failed to start: no libvips",
		"GOMEMLIMIT: not configured",
		"GOMEMLIMIT: 512.0 MiB (50% of 1.0 GiB)",
		"Backpressure: ENABLED",
		"http://127.0.0.1:9090",
		"RUN: derive",
		"SHUTDOWN INITIATED (interrupt)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}
