package loader

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gamekit/protoreg/loader"

// otelMetrics holds the OpenTelemetry metric instruments for the
// loader. They are created once in New when a MeterProvider is
// configured and reused for every document load.
type otelMetrics struct {
	// loadedCounter increments for each record stored in the registry
	loadedCounter metric.Int64Counter

	// skippedCounter increments for each record dropped by a
	// recoverable error
	skippedCounter metric.Int64Counter

	// durationHistogram records document load duration in milliseconds
	durationHistogram metric.Float64Histogram
}

// initOTelMetrics creates all metric instruments. Called once from New
// when a meter is configured.
func (l *Loader) initOTelMetrics() error {
	if l.meter == nil {
		return nil
	}

	m := &otelMetrics{}
	var err error

	m.loadedCounter, err = l.meter.Int64Counter(
		"protoreg.records.loaded",
		metric.WithDescription("Number of prototype records stored in the registry"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create loaded counter: %w", err)
	}

	m.skippedCounter, err = l.meter.Int64Counter(
		"protoreg.records.skipped",
		metric.WithDescription("Number of prototype records dropped by recoverable errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create skipped counter: %w", err)
	}

	m.durationHistogram, err = l.meter.Float64Histogram(
		"protoreg.load.duration",
		metric.WithDescription("Document load duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}

	l.metrics = m
	return nil
}

// startLoadSpan opens the per-document span. Returns ctx unchanged and
// a nil span when tracing is not configured.
func (l *Loader) startLoadSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	if l.tracer == nil {
		return ctx, nil
	}
	return l.tracer.Start(ctx, "protoreg.load_document",
		trace.WithAttributes(attribute.String("document.source", source)))
}

// finishLoad records metrics and closes the span for one document load.
func (l *Loader) finishLoad(ctx context.Context, span trace.Span, res *Result, start time.Time, docErr error) {
	if l.metrics != nil {
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0
		attrs := metric.WithAttributes(attribute.String("document.source", res.Source))

		l.metrics.durationHistogram.Record(ctx, elapsed, attrs)
		if res.Loaded > 0 {
			l.metrics.loadedCounter.Add(ctx, int64(res.Loaded), attrs)
		}
		if len(res.Errors) > 0 {
			l.metrics.skippedCounter.Add(ctx, int64(len(res.Errors)), attrs)
		}
	}

	if span != nil {
		span.SetAttributes(
			attribute.Int("records.loaded", res.Loaded),
			attribute.Int("records.skipped", len(res.Errors)),
		)
		if docErr != nil {
			span.RecordError(docErr)
			span.SetStatus(codes.Error, "document rejected")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
