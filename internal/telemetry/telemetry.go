// Package telemetry configures OpenTelemetry tracing for deptrack.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Trace modes accepted by Writer.
const (
	ModeOff    = ""
	ModeStderr = "stderr"
	ModeStdout = "stdout"
)

// Writer resolves a trace mode to the writer spans are exported to.
// ModeOff yields io.Discard.
func Writer(mode string) (io.Writer, error) {
	switch mode {
	case ModeOff, "off", "none":
		return io.Discard, nil
	case ModeStderr:
		return os.Stderr, nil
	case ModeStdout:
		return os.Stdout, nil
	default:
		return nil, fmt.Errorf("unknown trace mode %q (want stderr or stdout)", mode)
	}
}

// Init installs a global tracer provider exporting spans as JSON to w.
// The returned function flushes and stops the provider.
func Init(ctx context.Context, serviceName, serviceVersion string, w io.Writer) (func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	if w == nil {
		w = io.Discard
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
