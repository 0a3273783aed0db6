package id

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Named is the unique identifier of a prototype of type T that also
// retains the original name string used to construct the hash.
//
// Equality and hashing delegate to the ID only; the name exists for
// display, error messages and round-tripping the serialized form (a
// Named marshals back out as the name, not the hash).
type Named[T any] struct {
	name string
	id   ID[T]
}

// NewNamed creates a Named identifier from a human-readable name.
func NewNamed[T any](name string) Named[T] {
	return Named[T]{name: name, id: NewID[T](name)}
}

// RestoreNamed rebuilds a Named identifier from a previously erased
// name/hash pair. The hash is trusted as-is; use NewNamed when only the
// name is known.
func RestoreNamed[T any](name string, raw uint64) Named[T] {
	return Named[T]{name: name, id: ID[T](raw)}
}

// Name returns the human-readable name.
func (n Named[T]) Name() string { return n.name }

// ID returns the hashed identifier.
func (n Named[T]) ID() ID[T] { return n.id }

// Raw returns the raw hash value.
func (n Named[T]) Raw() uint64 { return uint64(n.id) }

// Erase drops the static type tag while keeping the name.
func (n Named[T]) Erase() ErasedNamed {
	return ErasedNamed{name: n.name, id: Erased(n.id)}
}

// Equal reports whether two Named identifiers refer to the same
// prototype. Only the hash is compared.
func (n Named[T]) Equal(other Named[T]) bool { return n.id == other.id }

func (n Named[T]) String() string {
	return fmt.Sprintf("%s#%X", n.name, uint64(n.id))
}

// MarshalJSON encodes the Named identifier as its name string.
func (n Named[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.name)
}

// UnmarshalJSON decodes a name string and hashes it.
func (n *Named[T]) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*n = NewNamed[T](name)
	return nil
}

// ErasedNamed pairs a retained name with an erased identifier, for
// storage inside type-heterogeneous records.
type ErasedNamed struct {
	name string
	id   Erased
}

// NewErasedNamed creates an ErasedNamed from a human-readable name.
func NewErasedNamed(name string) ErasedNamed {
	return ErasedNamed{name: name, id: NewErased(name)}
}

// Name returns the human-readable name. Empty when the identifier was
// built from a raw hash with no retained name.
func (e ErasedNamed) Name() string { return e.name }

// ID returns the erased hashed identifier.
func (e ErasedNamed) ID() Erased { return e.id }

// Raw returns the raw hash value.
func (e ErasedNamed) Raw() uint64 { return uint64(e.id) }

// Equal reports identifier equality; the name is not compared.
func (e ErasedNamed) Equal(other ErasedNamed) bool { return e.id == other.id }

func (e ErasedNamed) String() string {
	return fmt.Sprintf("%s#%X", e.name, uint64(e.id))
}
