// Package telemetry sets up OpenTelemetry export for wept.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options selects what Setup exports.
type Options struct {
	ServiceName    string
	ServiceVersion string
	// Tracing exports spans, Metrics exports OpenTelemetry instruments
	// every MetricsInterval.
	Tracing         bool
	Metrics         bool
	MetricsInterval time.Duration
	// Writer receives the exported data. Defaults to os.Stderr so command
	// output on stdout stays clean.
	Writer io.Writer
}

// Setup installs global tracer and meter providers that write to
// opts.Writer. With both signals disabled it installs nothing and returns a
// no-op shutdown.
//
// The returned shutdown function flushes pending data and should be
// deferred by the caller.
func Setup(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !opts.Tracing && !opts.Metrics {
		return noop, nil
	}
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.MetricsInterval <= 0 {
		opts.MetricsInterval = time.Minute
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", opts.ServiceVersion),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("build resource: %w", err)
	}

	var shutdowns []func(context.Context) error

	if opts.Tracing {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(opts.Writer))
		if err != nil {
			return noop, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if opts.Metrics {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(opts.Writer))
		if err != nil {
			return joinShutdown(shutdowns), fmt.Errorf("create metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(opts.MetricsInterval))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return joinShutdown(shutdowns), nil
}

func joinShutdown(fns []func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for i := len(fns) - 1; i >= 0; i-- {
			if err := fns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
