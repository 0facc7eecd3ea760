// Package otelx installs the global OpenTelemetry tracer provider used by
// selector spans.
package otelx

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bakkerme/photoselector/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	defaultServiceName = "photoselector"
	protocolGRPC       = "grpc"
	protocolHTTP       = "http/protobuf"
)

// Shutdown flushes and stops the provider installed by Init.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a batching OTLP tracer provider whose resource describes the
// selector host: service name and version plus any attrs the caller adds,
// such as the file provider authority or the number of gallery roots. When
// tracing is disabled the global no-op provider stays and Shutdown does
// nothing.
func Init(ctx context.Context, logger *slog.Logger, cfg config.OTelEnvConfig, attrs ...attribute.KeyValue) (Shutdown, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		logger.Debug("otel disabled")
		return noopShutdown, nil
	}

	exp, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}
	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcess(),
		resource.WithAttributes(resourceAttributes(cfg, attrs)...),
	)
	if err != nil {
		return noopShutdown, fmt.Errorf("otel resource: %w", err)
	}

	ratio := sampleRatio(cfg)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(2*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("otel initialized",
		"service_name", serviceName(cfg),
		"otlp_endpoint", endpointOrDefault(cfg),
		"otlp_protocol", protocolOrDefault(cfg),
		"sample_ratio", ratio,
		"resource_attrs", len(attrs),
	)
	return tp.Shutdown, nil
}

func resourceAttributes(cfg config.OTelEnvConfig, extra []attribute.KeyValue) []attribute.KeyValue {
	out := []attribute.KeyValue{semconv.ServiceName(serviceName(cfg))}
	if v := strings.TrimSpace(cfg.ServiceVersion); v != "" {
		out = append(out, semconv.ServiceVersion(v))
	}
	for _, kv := range extra {
		if kv.Valid() {
			out = append(out, kv)
		}
	}
	return out
}

func serviceName(cfg config.OTelEnvConfig) string {
	if v := strings.TrimSpace(cfg.ServiceName); v != "" {
		return v
	}
	return defaultServiceName
}

func sampleRatio(cfg config.OTelEnvConfig) float64 {
	return min(max(cfg.SampleRatio, 0), 1)
}

func newTraceExporter(ctx context.Context, cfg config.OTelEnvConfig) (*otlptrace.Exporter, error) {
	switch protocol := protocolOrDefault(cfg); protocol {
	case protocolHTTP:
		return httpExporter(ctx, cfg)
	case protocolGRPC:
		return grpcExporter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported OTEL_EXPORTER_OTLP_PROTOCOL %q (expected grpc or http/protobuf)", protocol)
	}
}

func httpExporter(ctx context.Context, cfg config.OTelEnvConfig) (*otlptrace.Exporter, error) {
	endpoint := endpointOrDefault(cfg)
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if strings.Contains(endpoint, "://") {
		opts = []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func grpcExporter(ctx context.Context, cfg config.OTelEnvConfig) (*otlptrace.Exporter, error) {
	endpoint, err := hostPort(endpointOrDefault(cfg))
	if err != nil {
		return nil, err
	}
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// hostPort strips a scheme from endpoint; the grpc exporter wants host:port.
func hostPort(endpoint string) (string, error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse OTEL_EXPORTER_OTLP_ENDPOINT: %w", err)
	}
	return u.Host, nil
}

func endpointOrDefault(cfg config.OTelEnvConfig) string {
	if v := strings.TrimSpace(cfg.Endpoint); v != "" {
		return v
	}
	if protocolOrDefault(cfg) == protocolHTTP {
		return "localhost:4318"
	}
	return "localhost:4317"
}

func protocolOrDefault(cfg config.OTelEnvConfig) string {
	switch v := strings.ToLower(strings.TrimSpace(cfg.Protocol)); v {
	case "":
		return protocolGRPC
	case "http":
		return protocolHTTP
	default:
		return v
	}
}
