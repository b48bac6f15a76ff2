package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "bedrockproxy"

// initTracing installs a global provider that batches spans to an OTLP/HTTP
// collector. Endpoint and headers come from the OTEL_EXPORTER_OTLP_* variables.
func initTracing(ctx context.Context, opts ...otlptracehttp.Option) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx, append([]otlptracehttp.Option{otlptracehttp.WithInsecure()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			"",
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}
