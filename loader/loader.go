package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	protoreg "github.com/gamekit/protoreg"
	"github.com/gamekit/protoreg/document"
	"github.com/gamekit/protoreg/registry"
	"github.com/gamekit/protoreg/resource"
)

// Loader decodes prototype documents into a registry.
type Loader struct {
	reg       *registry.Registry
	resources resource.Loader
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	metrics   *otelMetrics
}

// Result summarizes one document load. Errors holds the records that
// were skipped; Loaded counts the ones stored.
type Result struct {
	// Batch identifies this load for correlation across logs and
	// registry events
	Batch uuid.UUID

	// Source is the document path the records came from
	Source string

	// Loaded counts records stored in the registry
	Loaded int

	// Errors lists records skipped by recoverable failures
	Errors []RecordError
}

// RecordError describes one skipped record.
type RecordError struct {
	Source string
	Name   string
	Type   string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q (type %q) in %s: %v", e.Name, e.Type, e.Source, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// New creates a Loader writing into reg.
func New(reg *registry.Registry, opts ...Option) (*Loader, error) {
	if reg == nil {
		return nil, protoreg.NewConfigurationError("loader.New", errors.New("registry is nil"))
	}

	l := &Loader{
		reg:    reg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.initOTelMetrics(); err != nil {
		return nil, protoreg.NewConfigurationError("loader.New", err)
	}

	return l, nil
}

// LoadDocument parses data as a prototype document named by source and
// stores its records. A document whose top-level structure cannot be
// parsed returns an error and stores nothing; per-record failures skip
// only the failing record and are reported in the Result.
func (l *Loader) LoadDocument(ctx context.Context, source string, data []byte) (*Result, error) {
	res := &Result{
		Batch:  uuid.New(),
		Source: source,
	}

	start := time.Now()
	ctx, span := l.startLoadSpan(ctx, source)

	records, err := document.ParseFile(source, data)
	if err != nil {
		l.logger.Error("document rejected",
			"source", source,
			"batch", res.Batch,
			"error", err)
		l.finishLoad(ctx, span, res, start, err)
		return res, err
	}

	dc := &decodeContext{
		ctx:       ctx,
		source:    source,
		resources: l.resources,
	}

	for _, rec := range records {
		t, ok := l.reg.Resolve(rec.Type)
		if !ok {
			l.skip(res, rec, fmt.Errorf("%w: %q", protoreg.ErrUnknownDiscriminant, rec.Type))
			continue
		}

		proto, err := l.decodeRecord(dc, t, rec)
		if err != nil {
			l.skip(res, rec, err)
			continue
		}

		if err := l.reg.Insert(t, proto); err != nil {
			l.skip(res, rec, err)
			continue
		}

		res.Loaded++
	}

	l.logger.Info("document loaded",
		"source", source,
		"batch", res.Batch,
		"loaded", res.Loaded,
		"skipped", len(res.Errors))
	l.finishLoad(ctx, span, res, start, nil)

	return res, nil
}

// skip records one failed record and logs it.
func (l *Loader) skip(res *Result, rec document.Record, err error) {
	res.Errors = append(res.Errors, RecordError{
		Source: res.Source,
		Name:   rec.Name,
		Type:   rec.Type,
		Err:    err,
	})
	l.logger.Warn("record skipped",
		"source", res.Source,
		"batch", res.Batch,
		"name", rec.Name,
		"type", rec.Type,
		"error", err)
}

// LoadFile reads one document from fsys and loads it.
func (l *Loader) LoadFile(ctx context.Context, fsys fs.FS, path string) (*Result, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, protoreg.NewResourceError("loader.LoadFile", err).
			WithContext(map[string]any{"path": path})
	}
	return l.LoadDocument(ctx, path, data)
}

// LoadDir walks root inside fsys and loads every file whose name
// matches a prototype document extension. Results are returned per
// document in walk order. Document-fatal parse errors do not stop the
// walk; they are joined into the returned error.
func (l *Loader) LoadDir(ctx context.Context, fsys fs.FS, root string) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)

	walkErr := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !document.Matches(path) {
			return nil
		}

		res, err := l.LoadFile(ctx, fsys, path)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, protoreg.NewResourceError("loader.LoadDir", walkErr).
			WithContext(map[string]any{"root": root}))
	}

	return results, errors.Join(errs...)
}
