package id

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// FNV-1a 64-bit parameters.
const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Hash returns the 64-bit FNV-1a hash of the UTF-8 bytes of name.
// It is a pure function: identical names always produce identical
// hashes, across calls and across processes.
func Hash(name string) uint64 {
	h := uint64(offset64)
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= prime64
	}
	return h
}

// Ident is implemented by every identifier form in this package.
// It exposes the raw hash regardless of static typing.
type Ident interface {
	Raw() uint64
}

// ID is the unique identifier of a prototype of type T.
//
// The type parameter carries no runtime payload; it only prevents an
// ID[Sword] from being used where an ID[Potion] is expected. Two IDs are
// equal iff their hashes are equal.
type ID[T any] uint64

// NewID creates an ID from a human-readable name.
func NewID[T any](name string) ID[T] {
	return ID[T](Hash(name))
}

// FromRaw creates an ID from a raw hash value.
func FromRaw[T any](raw uint64) ID[T] {
	return ID[T](raw)
}

// Raw returns the raw hash value of the ID.
func (i ID[T]) Raw() uint64 { return uint64(i) }

// Erase drops the static type tag, for use as a key in
// type-heterogeneous maps.
func (i ID[T]) Erase() Erased { return Erased(i) }

func (i ID[T]) String() string {
	return fmt.Sprintf("#%X", uint64(i))
}

// MarshalJSON encodes the ID as its raw hash number.
func (i ID[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(i))
}

// UnmarshalJSON accepts either a string, which is hashed, or a number,
// which is taken as the raw hash. The numeric form decodes straight
// into uint64; hashes routinely exceed 2^53, so a float64 intermediate
// would round them to a different identifier.
func (i *ID[T]) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*i = NewID[T](name)
		return nil
	}
	var raw uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("id: expected name string or raw hash number: %w", err)
	}
	*i = ID[T](raw)
	return nil
}

// Erased is an identifier stripped of its static type tag. The outer
// registry map is already keyed by type, so the inner key need not carry
// it again.
type Erased uint64

// NewErased creates an Erased identifier from a human-readable name.
func NewErased(name string) Erased {
	return Erased(Hash(name))
}

// Raw returns the raw hash value.
func (e Erased) Raw() uint64 { return uint64(e) }

func (e Erased) String() string {
	return fmt.Sprintf("#%X", uint64(e))
}
