package tracing

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"tonetranslate-go/internal/constants"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "tonetranslate-go"

var enabled atomic.Bool

// Options selects the OTLP/gRPC exporter. An empty Endpoint disables export.
type Options struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// OptionsFromEnv reads the standard OTEL_* variables.
func OptionsFromEnv() Options {
	insecure := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"))
	return Options{
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    insecure == "" || strings.EqualFold(insecure, "true") || insecure == "1",
		SampleRatio: sampleRatio(),
	}
}

type shutdownFunc = func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a batching tracer provider when opts.Endpoint is set and
// returns its shutdown. Without an endpoint spans go to the global no-op provider.
func Init(ctx context.Context, opts Options) (shutdownFunc, error) {
	if opts.Endpoint == "" {
		return noopShutdown, nil
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return noopShutdown, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", constants.Version),
			attribute.String("service.instance.id", hostname()),
		),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return noopShutdown, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	Install(provider)
	enabled.Store(true)
	return func(ctx context.Context) error {
		enabled.Store(false)
		return provider.Shutdown(ctx)
	}, nil
}

// Install sets the global provider and the W3C trace-context propagator.
func Install(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

// StartSpan starts a span on the tracer "tonetranslate-go/<component>".
func StartSpan(ctx context.Context, component, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	name := serviceName
	if c := strings.TrimSpace(component); c != "" {
		name += "/" + c
	}
	return otel.Tracer(name).Start(ctx, spanName, opts...)
}

// Fail marks span as errored. msg defaults to err's text.
func Fail(span trace.Span, err error, msg string) {
	if err != nil {
		span.RecordError(err)
		if msg == "" {
			msg = err.Error()
		}
	}
	span.SetStatus(codes.Error, msg)
}

// Succeed marks span as ok.
func Succeed(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Enabled reports whether an exporter is active.
func Enabled() bool { return enabled.Load() }

// sampleRatio reads OTEL_TRACES_SAMPLER_ARG; missing or out of [0,1] means 1.
func sampleRatio() float64 {
	raw := strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG"))
	if raw == "" {
		return 1
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 1
	}
	return v
}

func hostname() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
