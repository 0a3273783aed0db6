package loader

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gamekit/protoreg/resource"
)

// Option is a functional option for configuring a Loader.
type Option func(*Loader)

// WithLogger sets the structured logger used for per-record
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithResourceLoader sets the loader handed the resolved paths of
// reference fields. Without one, any document containing a reference
// field fails that record with a field error.
func WithResourceLoader(resources resource.Loader) Option {
	return func(l *Loader) {
		l.resources = resources
	}
}

// WithTracerProvider enables span creation around document loads.
//
// Example:
//
//	loader.New(reg, loader.WithTracerProvider(otel.GetTracerProvider()))
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Loader) {
		l.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider enables load metrics: records loaded, records
// skipped, and document load duration.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(l *Loader) {
		l.meter = mp.Meter(instrumentationName)
	}
}
