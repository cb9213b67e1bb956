// Command photo-pipeline builds the photo gallery's derived assets from a
// directory of original photos.
//
// # Commands
//
//   - derive: writes a 320px-wide WebP thumbnail (min) and a full-size WebP
//     (mid) for every photo, skipping derivatives that already exist.
//   - catalog: extracts dimensions, EXIF, dominant colours and location into
//     the catalog JSON read by the gallery.
//   - all: catalog, then derive.
//   - version: prints build information.
//
// # Lifecycle
//
// Every run command follows the same sequence:
//
//  1. Configuration: defaults, --config YAML, environment, then flags.
//  2. Memory: GOMEMLIMIT from MEMORY_LIMIT and a backpressure monitor.
//  3. Observability: Prometheus metrics (served when --metrics-addr is set),
//     runtime collector, OpenTelemetry tracing when enabled.
//  4. Codec: libvips startup. derive requires it; catalog falls back to
//     pure-Go decoding.
//  5. Work, with progress on stderr and a summary on stdout.
//  6. Shutdown in reverse order. SIGINT/SIGTERM stop the run between
//     batches.
//
// Exit status is non-zero only for setup and infrastructure errors. Files
// that fail to convert are counted in the summary.
package main
