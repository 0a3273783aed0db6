package registry

import (
	"fmt"
	"reflect"

	protoreg "github.com/gamekit/protoreg"
	"github.com/gamekit/protoreg/id"
	"github.com/gamekit/protoreg/schema"
)

// Type is the opaque handle for a shape registered under a discriminant.
// Handles are created once during setup by Register and live for the
// process lifetime; everything outside this package treats them as
// opaque keys.
type Type struct {
	discriminant string
	goType       reflect.Type
	dataSchema   schema.JSON
}

// Discriminant returns the string tag documents use to select this type.
func (t *Type) Discriminant() string { return t.discriminant }

// GoType returns the Go type of the registered data shape.
func (t *Type) GoType() reflect.Type { return t.goType }

// DataSchema returns the structural schema fragment for the data shape,
// typically a $ref into the registry's shared definitions table.
func (t *Type) DataSchema() schema.JSON { return t.dataSchema }

func (t *Type) String() string {
	return fmt.Sprintf("Type(%s)", t.discriminant)
}

// Register registers T under the given discriminant, creates its empty
// collection, and generates its schema fragment into the registry's
// shared definitions table.
//
// Registration happens once per type during setup, before any document
// loads. Registering the same discriminant or the same Go type twice is
// a setup bug and fails.
func Register[T any](r *Registry, discriminant string) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	goType := reflect.TypeOf((*T)(nil)).Elem()
	if goType.Kind() != reflect.Struct {
		return nil, protoreg.NewConfigurationError("registry.Register",
			fmt.Errorf("prototype data shape must be a struct, got %s", goType.Kind()))
	}

	if _, exists := r.types[discriminant]; exists {
		return nil, protoreg.NewConfigurationError("registry.Register",
			fmt.Errorf("discriminant %q already registered", discriminant))
	}
	if _, exists := r.byGoType[goType]; exists {
		return nil, protoreg.NewConfigurationError("registry.Register",
			fmt.Errorf("type %s already registered", goType))
	}

	t := &Type{
		discriminant: discriminant,
		goType:       goType,
		dataSchema:   r.gen.Schema(goType),
	}

	r.types[discriminant] = t
	r.byGoType[goType] = t
	r.collections[t] = make(map[id.Erased]Prototype)

	return t, nil
}

// MustRegister is Register, panicking on setup errors. Intended for
// package-level registration blocks where a failure is a programming
// mistake.
func MustRegister[T any](r *Registry, discriminant string) *Type {
	t, err := Register[T](r, discriminant)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve looks up the type handle registered under discriminant.
// Steady-state readers may call it concurrently; a missing discriminant
// is reported through ok, never a panic.
func (r *Registry) Resolve(discriminant string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[discriminant]
	return t, ok
}

// TypeOf looks up the type handle for the Go shape T.
func TypeOf[T any](r *Registry) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byGoType[reflect.TypeOf((*T)(nil)).Elem()]
	return t, ok
}

// Types returns every registered type handle, in unspecified order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out
}
