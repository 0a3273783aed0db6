// Package id provides stable 64-bit identifiers derived from
// human-readable names.
//
// Identifiers hash the UTF-8 bytes of a name with FNV-1a so that
// identical names always produce identical identifiers across processes.
// The typed forms ID[T] and Named[T] carry a phantom type parameter that
// prevents cross-type confusion at compile time; the erased forms drop
// the parameter so identifiers can key type-heterogeneous maps.
//
// Named identifiers additionally retain the original name string for
// display, error messages and name-based lookup. Equality for every form
// considers only the hash.
package id
