package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs global tracer/meter providers according to cfg. Call once on startup.
func Init(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	setPropagator()

	if cfg.Disabled {
		slog.InfoContext(ctx, "telemetry disabled")
		return noopShutdown, nil
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("telemetry: service name is required")
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = 5 * time.Second
	}

	switch cfg.Mode {
	case ModeAuto:
		return initAutoMode(ctx, cfg)
	case ModeManual:
		return initManualMode(ctx, cfg)
	case ModeDetect, "":
		if detectGoAuto() {
			return initAutoMode(ctx, cfg)
		}
		return initManualMode(ctx, cfg)
	default:
		return nil, fmt.Errorf("telemetry: unknown mode %q", cfg.Mode)
	}
}

func setPropagator() {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
}

// detectGoAuto reports whether the eBPF Go auto-instrumentation agent is attached.
func detectGoAuto() bool {
	if os.Getenv("OTEL_GO_AUTO_TARGET_EXE") != "" {
		slog.Info("using auto-instrumentation with sidecar agent")
		return true
	}
	switch strings.ToLower(os.Getenv("OTEL_GO_AUTO_ENABLED")) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// initAutoMode leaves the tracer provider to the agent and only installs
// a meter provider for application metrics.
func initAutoMode(parent context.Context, cfg Config) (ShutdownFunc, error) {
	ctx, cancel := context.WithTimeout(parent, cfg.StartupTimeout)
	defer cancel()

	if cfg.DisableMetrics {
		return noopShutdown, nil
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		slog.WarnContext(ctx, "metrics unavailable in auto mode", slog.Any("error", err))
		return noopShutdown, nil
	}
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: meter provider shutdown: %w", err)
		}
		return nil
	}, nil
}

func initManualMode(parent context.Context, cfg Config) (ShutdownFunc, error) {
	ctx, cancel := context.WithTimeout(parent, cfg.StartupTimeout)
	defer cancel()

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	exp, err := buildTraceExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(buildSampler(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)

	var mp *sdkmetric.MeterProvider
	if !cfg.DisableMetrics {
		mp, err = newMeterProvider(ctx, cfg, res)
		if err != nil {
			_ = tp.Shutdown(parent)
			return nil, fmt.Errorf("telemetry: build metric exporter: %w", err)
		}
		otel.SetMeterProvider(mp)
	}

	slog.InfoContext(ctx, "telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("protocol", string(cfg.Protocol)),
		slog.Bool("metrics", mp != nil),
	)

	return func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: tracer provider shutdown: %w", err))
		}
		if mp != nil {
			if err := mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("telemetry: meter provider shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	}, nil
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(cfg.ServiceName),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentKey.String(cfg.Environment))
	}
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithOS(),
		resource.WithAttributes(attrs...),
	)
}

func hasScheme(endpoint string) bool {
	return strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
}

func buildTraceExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	ep := cfg.Endpoint

	if cfg.Protocol == ProtocolGRPC {
		var opts []otlptracegrpc.Option
		switch {
		case ep == "":
		case hasScheme(ep):
			opts = append(opts, otlptracegrpc.WithEndpointURL(ep))
		default:
			opts = append(opts, otlptracegrpc.WithEndpoint(ep))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	}

	var opts []otlptracehttp.Option
	switch {
	case ep == "":
	case hasScheme(ep):
		opts = append(opts, otlptracehttp.WithEndpointURL(strings.TrimSuffix(ep, "/")+"/v1/traces"))
	default:
		opts = append(opts, otlptracehttp.WithEndpoint(ep))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := buildMetricExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	), nil
}

func buildMetricExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	ep := cfg.Endpoint

	if cfg.Protocol == ProtocolGRPC {
		var opts []otlpmetricgrpc.Option
		switch {
		case ep == "":
		case hasScheme(ep):
			opts = append(opts, otlpmetricgrpc.WithEndpointURL(ep))
		default:
			opts = append(opts, otlpmetricgrpc.WithEndpoint(ep))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}

	var opts []otlpmetrichttp.Option
	switch {
	case ep == "":
	case hasScheme(ep):
		opts = append(opts, otlpmetrichttp.WithEndpointURL(strings.TrimSuffix(ep, "/")+"/v1/metrics"))
	default:
		opts = append(opts, otlpmetrichttp.WithEndpoint(ep))
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func buildSampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio <= 0:
		return sdktrace.NeverSample()
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
