// Package schema builds JSON Schema (draft-07 flavored) documents
// describing registered prototype shapes.
//
// The JSON type models a schema document and marshals to standard JSON
// Schema. Builder helpers (String, Object, Array, ...) construct schemas
// by hand; Generator derives them from Go types by reflection, memoizing
// named struct schemas in a shared definitions table so repeated and
// cyclic references resolve to $ref entries instead of duplicate or
// infinite emission.
//
// The package only emits schema. It does not validate documents against
// it; validation belongs to external tooling consuming the emitted
// schema.
package schema
