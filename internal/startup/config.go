package startup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"photo-pipeline/internal/catalog"
	"photo-pipeline/internal/derive"
	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/pipeline"
	"photo-pipeline/internal/pool"
	"photo-pipeline/internal/tracing"
	"photo-pipeline/internal/workers"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	SourceDir   string `yaml:"sourceDir"`
	MinDir      string `yaml:"minDir"`
	MidDir      string `yaml:"midDir"`
	CatalogFile string `yaml:"catalogFile"`

	Workers         int           `yaml:"workers"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	BatchMultiplier int           `yaml:"batchMultiplier"`
	ThumbnailWidth  int           `yaml:"thumbnailWidth"`
	Quality         int           `yaml:"quality"`

	CatalogConcurrency int `yaml:"catalogConcurrency"`

	MetricsAddr string `yaml:"metricsAddr"`
	LogLevel    string `yaml:"logLevel"`

	Tracing  tracing.Config              `yaml:"tracing"`
	Location catalog.PlaceholderResolver `yaml:"location"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SourceDir:       "public/photos/origin",
		MinDir:          "public/photos/min",
		MidDir:          "public/photos/mid",
		CatalogFile:     "src/assets/info.json",
		Workers:         workers.ForCPU(0),
		IdleTimeout:     pool.DefaultIdleTimeout,
		BatchMultiplier: pipeline.DefaultBatchMultiplier,
		ThumbnailWidth:  derive.DefaultThumbnailWidth,
		Quality:         derive.DefaultQuality,
		LogLevel:        "info",
		Tracing: tracing.Config{
			ServiceName: tracing.DefaultServiceName,
			SampleRatio: 1,
		},
		Location: catalog.DefaultPlaceholder(),
	}
}

// LoadConfig returns the defaults overlaid with the YAML file at path (if
// path is non-empty) and then the environment. The result is not validated.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.SourceDir = getEnv("SOURCE_DIR", cfg.SourceDir)
	cfg.MinDir = getEnv("MIN_DIR", cfg.MinDir)
	cfg.MidDir = getEnv("MID_DIR", cfg.MidDir)
	cfg.CatalogFile = getEnv("CATALOG_FILE", cfg.CatalogFile)
	cfg.Workers = getEnvInt(workers.EnvOverride, cfg.Workers)
	cfg.IdleTimeout = getEnvDuration("IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.BatchMultiplier = getEnvInt("BATCH_MULTIPLIER", cfg.BatchMultiplier)
	cfg.ThumbnailWidth = getEnvInt("THUMBNAIL_WIDTH", cfg.ThumbnailWidth)
	cfg.Quality = getEnvInt("QUALITY", cfg.Quality)
	cfg.CatalogConcurrency = getEnvInt("CATALOG_CONCURRENCY", cfg.CatalogConcurrency)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		cfg.Tracing.Enabled = tracing.ParseBool(v)
	}
	cfg.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		cfg.Tracing.Insecure = tracing.ParseBool(v)
	}
	if r := tracing.ParseSampleRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG")); r > 0 {
		cfg.Tracing.SampleRatio = r
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	required := []struct{ name, value string }{
		{"sourceDir", c.SourceDir},
		{"minDir", c.MinDir},
		{"midDir", c.MidDir},
		{"catalogFile", c.CatalogFile},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", r.name))
		}
	}
	if c.MinDir != "" && c.MinDir == c.MidDir {
		errs = append(errs, fmt.Errorf("minDir and midDir must differ (both %s)", c.MinDir))
	}

	positive := []struct {
		name  string
		value int
	}{
		{"workers", c.Workers},
		{"batchMultiplier", c.BatchMultiplier},
		{"thumbnailWidth", c.ThumbnailWidth},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.value))
		}
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("idleTimeout must be positive, got %v", c.IdleTimeout))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality))
	}
	if c.CatalogConcurrency < 0 {
		errs = append(errs, fmt.Errorf("catalogConcurrency must not be negative, got %d", c.CatalogConcurrency))
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown logLevel %q", c.LogLevel))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sampleRatio must be within 0..1, got %v", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}

// Retry returns the filesystem retry settings with a resolver labelling
// the configured directories.
func (c *Config) Retry() filesystem.RetryConfig {
	r := filesystem.DefaultRetryConfig()
	r.VolumeResolver = c.Volumes()
	return r
}

// Volumes maps the configured directories to metric volume labels.
func (c *Config) Volumes() *filesystem.VolumeResolver {
	return filesystem.NewVolumeResolver(map[string]string{
		"source":  c.SourceDir,
		"min":     c.MinDir,
		"mid":     c.MidDir,
		"catalog": filepath.Dir(c.CatalogFile),
	})
}

// PipelineConfig returns the runner settings.
func (c *Config) PipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.PoolSize = c.Workers
	pc.IdleTimeout = c.IdleTimeout
	pc.BatchMultiplier = c.BatchMultiplier
	pc.Retry = c.Retry()
	return pc
}

// DeriveConfig returns the encode settings shared by every task.
func (c *Config) DeriveConfig() derive.Config {
	dc := derive.DefaultConfig()
	dc.ThumbnailWidth = c.ThumbnailWidth
	dc.Quality = c.Quality
	dc.Retry = c.Retry()
	return dc
}

// CatalogConfig returns the extractor settings.
func (c *Config) CatalogConfig() catalog.Config {
	cc := catalog.DefaultConfig()
	cc.Concurrency = c.CatalogConcurrency
	cc.Retry = c.Retry()
	return cc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
