// Package telemetry exports generation traces to an OpenTelemetry
// collector over OTLP/gRPC. Without an endpoint every span goes to a
// no-op tracer.
package telemetry

import (
	"context"
	"errors"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/duration"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// TracerName is the instrumentation scope of every span.
const TracerName = defaults.ToolName + "/generator"

// Options configures the exporter.
type Options struct {
	// Endpoint is the OTLP endpoint (e.g., "localhost:4317"). Empty
	// disables export.
	Endpoint string

	// ServiceName is the service name for traces (default: "schemafuzz").
	ServiceName string

	// Insecure uses insecure connection (no TLS).
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string
}

// Provider owns the tracer provider for one run.
type Provider struct {
	tp     *sdktrace.TracerProvider // nil when disabled
	tracer trace.Tracer
}

// Setup connects the OTLP exporter described by opts. With an empty
// endpoint it returns a disabled provider and no error.
func Setup(ctx context.Context, opts Options) (*Provider, error) {
	if opts.Endpoint == "" {
		return Disabled(), nil
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(ctx, duration.TelemetryConnect)
	defer cancel()
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}
	return New(sdktrace.WithBatcher(exporter), opts.ServiceName), nil
}

// New builds an enabled provider around a span processor option such as
// sdktrace.WithBatcher or sdktrace.WithSyncer.
func New(processor sdktrace.TracerProviderOption, serviceName string) *Provider {
	if serviceName == "" {
		serviceName = defaults.ToolName
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "generator"),
	)
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &Provider{tp: tp, tracer: tp.Tracer(TracerName)}
}

// Disabled returns a provider whose spans are dropped.
func Disabled() *Provider {
	return &Provider{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool { return p.tp != nil }

// Tracer returns the run's tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes pending spans. It is a no-op for a disabled provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, duration.TelemetryShutdown)
	defer cancel()
	if err := p.tp.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
