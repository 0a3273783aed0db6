// Package registry holds the runtime type registry and the per-type
// prototype collections.
//
// A Registry is the single owned context object a host threads through
// every operation: it maps discriminant strings to registered type
// descriptors, owns one collection of loaded prototypes per registered
// type, and accumulates the schema definitions used to emit the
// composite document schema.
//
// The documented lifecycle is init / steady-state / teardown: every
// shape is registered during setup with Register, before any document
// loads; steady state is concurrent reads plus serialized inserts and
// removes; Clear tears collections down for a full rebuild. All methods
// are safe for concurrent use, but registering after loading has begun
// is not part of the supported lifecycle.
//
// Within one type's collection, identifiers are unique: inserting a
// duplicate identifier is rejected, never overwritten. Mutations through
// the Registry emit Added/Removed events to Watch subscribers; the
// read-only View facade never emits.
package registry
