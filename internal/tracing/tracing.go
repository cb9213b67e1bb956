// Package tracing configures the OpenTelemetry tracer provider used for the
// pipeline.run, pipeline.batch, derive.task and catalog.extract spans.
//
// Tracing is off by default. When enabled, spans are exported over OTLP/gRPC;
// exporter failures disable tracing rather than aborting the run.
package tracing

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"

	"photo-pipeline/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"
)

// DefaultServiceName is reported when neither the config nor
// OTEL_SERVICE_NAME provide one.
const DefaultServiceName = "photo-pipeline"

// Config selects the exporter. Zero values fall back to the standard OTEL_*
// environment variables.
type Config struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"serviceName"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sampleRatio"`
}

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a global tracer provider according to cfg and returns a
// function that flushes and stops it.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if !cfg.Enabled {
		logging.Debug("Tracing disabled")
		return noopShutdown, nil
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME"))
	}
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	}
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	endpoint = SanitizeEndpoint(endpoint)

	insecure := cfg.Insecure
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); v != "" {
		insecure = ParseBool(v)
	}

	sampleRatio := cfg.SampleRatio
	if sampleRatio <= 0 || sampleRatio > 1 {
		sampleRatio = 1
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		logging.Warn("OTLP exporter init failed, tracing disabled: %v", err)
		return noopShutdown, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		logging.Warn("OTel resource init failed, using default: %v", err)
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)

	logging.Info("Tracing enabled: service=%s endpoint=%s ratio=%.2f", serviceName, endpoint, sampleRatio)
	return tp.Shutdown, nil
}

// SanitizeEndpoint turns an OTLP URL into the host:port form the gRPC
// exporter expects.
func SanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return strings.TrimSuffix(raw, "/")
}

// ParseBool accepts the usual truthy spellings found in environment files.
func ParseBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "true" || v == "1" || v == "yes" || v == "y" || v == "on"
}

// ParseSampleRatio returns 0 (meaning "sample everything") for empty or
// malformed input.
func ParseSampleRatio(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
