// Package startup loads the photo-pipeline configuration and prints the
// startup and shutdown log sections.
//
// # Configuration
//
// [LoadConfig] layers, in order: built-in defaults, an optional YAML file,
// and environment variables. Command-line flags are applied by the caller
// afterwards, followed by [Config.Validate].
//
//   - SOURCE_DIR: directory of original photos (default: public/photos/origin)
//   - MIN_DIR: thumbnail output directory (default: public/photos/min)
//   - MID_DIR: full-size output directory (default: public/photos/mid)
//   - CATALOG_FILE: catalog JSON path (default: src/assets/info.json)
//   - PIPELINE_WORKERS: pool size (default: number of usable CPUs)
//   - IDLE_TIMEOUT: idle worker lifetime as a Go duration (default: 5s)
//   - BATCH_MULTIPLIER: batch size as a multiple of the pool size (default: 10)
//   - THUMBNAIL_WIDTH: min derivative width in pixels (default: 320)
//   - QUALITY: WebP quality, 1-100 (default: 80)
//   - CATALOG_CONCURRENCY: catalog workers, 0 for one goroutine per file (default: 0)
//   - METRICS_ADDR: address for the /metrics endpoint, empty to disable
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - OTEL_ENABLED, OTEL_SERVICE_NAME, OTEL_EXPORTER_OTLP_ENDPOINT,
//     OTEL_EXPORTER_OTLP_INSECURE, OTEL_TRACES_SAMPLER_ARG: tracing
//
// A YAML file uses the same names in camelCase:
//
//	sourceDir: /photos/origin
//	workers: 4
//	idleTimeout: 10s
//	tracing:
//	  enabled: true
//	  endpoint: otel-collector:4317
//	location:
//	  country: Norway
//	  formattedAddress: Oslo, Norway
//
// # Build Information
//
// Version, Commit and BuildTime are injected via -ldflags and reported by
// [GetBuildInfo].
package startup
