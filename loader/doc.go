// Package loader turns parsed prototype documents into typed records
// stored in a registry.
//
// For each record the pipeline resolves the discriminant against the
// type registry, constructs a fresh instance of the registered shape,
// populates it from the untyped payload, resolves reference fields to
// resource handles, and inserts the assembled record. Errors are scoped
// as narrowly as possible: an unknown discriminant or a failed field
// skips one record and its siblings still load; only a document whose
// top-level structure cannot be parsed is rejected whole.
//
// Loading is observable: every document load runs under an
// OpenTelemetry span when a tracer provider is configured, and counters
// and histograms record loaded records, skipped records and load
// duration when a meter provider is configured.
package loader
