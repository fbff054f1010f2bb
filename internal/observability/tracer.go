package observability

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config holds the tracing setup. Tracing is opt-in; the zero value yields a
// no-op provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Endpoint       string
}

// TracerProvider wraps the SDK provider with enable/disable awareness.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	enabled  bool
}

// InitTracing sets up OTLP HTTP export and installs the global provider.
func InitTracing(ctx context.Context, config Config) (*TracerProvider, error) {
	if !config.Enabled {
		return &TracerProvider{enabled: false}, nil
	}

	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint+"/v1/traces"),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		otlptracehttp.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("deployment.environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(100),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return &TracerProvider{provider: tp, enabled: true}, nil
}

func (tp *TracerProvider) GetTracer(name string, options ...trace.TracerOption) trace.Tracer {
	if !tp.enabled {
		return noop.NewTracerProvider().Tracer(name, options...)
	}
	return otel.Tracer(name, options...)
}

func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if !tp.enabled || tp.provider == nil {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.enabled
}

// LoadConfigFromEnv builds the tracing config from OTEL_* variables.
func LoadConfigFromEnv() Config {
	enabled := os.Getenv("OTEL_TRACES_ENABLED") == "true"
	if !enabled {
		return Config{ServiceName: "visual-novel", ServiceVersion: "1.0.0", Environment: "development"}
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4318"
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	return Config{
		ServiceName:    "visual-novel",
		ServiceVersion: "1.0.0",
		Environment:    environment,
		Enabled:        true,
		Endpoint:       endpoint,
	}
}

// GenAIAttributes returns the GenAI semantic convention attributes shared by
// every LLM span.
func GenAIAttributes(system, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("gen_ai.operation.name", "chat"),
		attribute.String("gen_ai.system", system),
		attribute.String("gen_ai.request.model", model),
	}
}
