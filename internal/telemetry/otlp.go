// Package telemetry exports overlay spans over OTLP when an endpoint is
// configured.
package telemetry

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	EnvEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvServiceName = "OTEL_SERVICE_NAME"

	defaultServiceName = "overlaykit"
)

// Provider owns the SDK tracer provider. A nil *Provider is valid and means
// export is disabled.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// NewProvider creates an OTLP/HTTP exporting provider if
// OTEL_EXPORTER_OTLP_ENDPOINT is set. Returns nil if the endpoint is not
// configured (disabled).
func NewProvider(ctx context.Context) (*Provider, error) {
	endpoint := os.Getenv(EnvEndpoint)
	if endpoint == "" {
		return nil, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	if !strings.Contains(endpoint, "://") {
		// bare host:port, local collector
		opts = []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		}
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	serviceName := os.Getenv(EnvServiceName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	return &Provider{
		provider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		),
	}, nil
}

// Install makes p the global tracer provider so components using
// otel.Tracer export through it.
func (p *Provider) Install() {
	if p == nil {
		return
	}
	otel.SetTracerProvider(p.provider)
}

// Tracer returns a named tracer, falling back to the global provider.
func (p *Provider) Tracer(name string) oteltrace.Tracer {
	if p == nil {
		return otel.Tracer(name)
	}
	return p.provider.Tracer(name)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
