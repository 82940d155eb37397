// Package otelx wires OpenTelemetry tracing for the connectors. Collectors
// start a span per Fetch and per sub-fetch; Init installs an OTLP exporter
// when tracing is enabled and is a no-op otherwise.
package otelx

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
)

// Config mirrors the standard OTEL_* environment knobs.
type Config struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

// Tracer returns the tracer used by connector packages.
func Tracer() trace.Tracer {
	return otel.Tracer("signalhouse/connectors")
}

// Init sets up the global tracer provider. The returned function flushes and
// shuts the provider down; it is nil when tracing is disabled.
func Init(ctx context.Context, logger *slog.Logger, cfg Config) (func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return nil, nil
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "connectors"
	}

	sampleRatio := cfg.SampleRatio
	if sampleRatio < 0 {
		sampleRatio = 0
	}
	if sampleRatio > 1 {
		sampleRatio = 1
	}

	exp, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(2*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info(
		"otel initialized",
		"service_name", serviceName,
		"otlp_endpoint", endpointOrDefault(cfg),
		"otlp_protocol", protocolOrDefault(cfg),
		"sample_ratio", sampleRatio,
	)

	return tp.Shutdown, nil
}

func newTraceExporter(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	headers := cfg.Headers
	insecure := cfg.Insecure

	protocol := protocolOrDefault(cfg)
	switch protocol {
	case "http/protobuf":
		opts := []otlptracehttp.Option{}
		endpoint := endpointOrDefault(cfg)
		if strings.Contains(endpoint, "://") {
			opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
		} else {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(headers))
		}
		return otlptracehttp.New(ctx, opts...)
	case "grpc":
		opts := []otlptracegrpc.Option{}
		endpoint := endpointOrDefault(cfg)
		if strings.Contains(endpoint, "://") {
			u, err := url.Parse(endpoint)
			if err != nil {
				return nil, fmt.Errorf("parse OTEL_EXPORTER_OTLP_ENDPOINT: %w", err)
			}
			endpoint = u.Host
		}
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(headers))
		}
		return otlptracegrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTEL_EXPORTER_OTLP_PROTOCOL %q (expected grpc or http/protobuf)", protocol)
	}
}

func endpointOrDefault(cfg Config) string {
	if v := strings.TrimSpace(cfg.Endpoint); v != "" {
		return v
	}
	switch protocolOrDefault(cfg) {
	case "http/protobuf":
		return "localhost:4318"
	default:
		return "localhost:4317"
	}
}

func protocolOrDefault(cfg Config) string {
	if v := strings.ToLower(strings.TrimSpace(cfg.Protocol)); v != "" {
		if v == "http" {
			return "http/protobuf"
		}
		return v
	}
	return "grpc"
}
