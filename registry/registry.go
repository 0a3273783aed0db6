package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	protoreg "github.com/gamekit/protoreg"
	"github.com/gamekit/protoreg/id"
	"github.com/gamekit/protoreg/schema"
)

// Prototype is a loaded record in its erased form: the retained
// name/identifier pair, the record's tags, and the populated data shape
// behind an interface. The typed accessors recover the concrete shape.
type Prototype struct {
	Name id.ErasedNamed
	Tags []string
	Data any
}

// Record is a loaded record with its static type recovered.
type Record[T any] struct {
	Name id.Named[T]
	Tags []string
	Data T
}

// Registry owns the discriminant table and one prototype collection per
// registered type. Mutation is serialized under a single lock so the
// duplicate-identifier invariant holds even when loading is scheduled
// across concurrent tasks.
type Registry struct {
	mu          sync.RWMutex
	types       map[string]*Type
	byGoType    map[reflect.Type]*Type
	collections map[*Type]map[id.Erased]Prototype
	gen         *schema.Generator
	logger      *slog.Logger

	subMu       sync.Mutex
	subscribers map[*Type][]*subscriber
	dropped     uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger used for event delivery
// diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		types:       make(map[string]*Type),
		byGoType:    make(map[reflect.Type]*Type),
		collections: make(map[*Type]map[id.Erased]Prototype),
		gen:         schema.NewGenerator(),
		subscribers: make(map[*Type][]*subscriber),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert adds a prototype to t's collection. An identifier already
// present for that type fails with ErrDuplicateIdentifier and the
// original entry is retained. On success an Added event is emitted.
func (r *Registry) Insert(t *Type, p Prototype) error {
	r.mu.Lock()

	collection, ok := r.collections[t]
	if !ok {
		r.mu.Unlock()
		return protoreg.NewRegistryError("Registry.Insert",
			fmt.Errorf("%w: %s", protoreg.ErrNotRegistered, t))
	}

	key := p.Name.ID()
	if _, exists := collection[key]; exists {
		r.mu.Unlock()
		return protoreg.NewRegistryError("Registry.Insert",
			fmt.Errorf("%w: %s in %s", protoreg.ErrDuplicateIdentifier, p.Name, t))
	}

	collection[key] = p
	r.mu.Unlock()

	r.emit(Event{Kind: Added, Type: t, Name: p.Name, Record: p})
	return nil
}

// Get looks up a prototype in t's collection by identifier.
func (r *Registry) Get(t *Type, key id.Erased) (Prototype, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.collections[t][key]
	return p, ok
}

// GetByName looks up a prototype by hashing the given name. Only records
// inserted with a retained name can be found this way; a raw identifier
// with no name never matches a name-based lookup.
func (r *Registry) GetByName(t *Type, name string) (Prototype, bool) {
	return r.Get(t, id.NewErased(name))
}

// Remove deletes a prototype from t's collection and returns it. An
// absent identifier fails with ErrNotFound. On success a Removed event
// is emitted.
func (r *Registry) Remove(t *Type, key id.Erased) (Prototype, error) {
	r.mu.Lock()

	collection, ok := r.collections[t]
	if !ok {
		r.mu.Unlock()
		return Prototype{}, protoreg.NewRegistryError("Registry.Remove",
			fmt.Errorf("%w: %s", protoreg.ErrNotRegistered, t))
	}

	p, exists := collection[key]
	if !exists {
		r.mu.Unlock()
		return Prototype{}, protoreg.NewRegistryError("Registry.Remove",
			fmt.Errorf("%w: %s in %s", protoreg.ErrNotFound, key, t))
	}

	delete(collection, key)
	r.mu.Unlock()

	r.emit(Event{Kind: Removed, Type: t, Name: p.Name, Record: p})
	return p, nil
}

// RemoveByName removes a prototype by hashing the given name.
func (r *Registry) RemoveByName(t *Type, name string) (Prototype, error) {
	return r.Remove(t, id.NewErased(name))
}

// Len returns the number of prototypes loaded for t.
func (r *Registry) Len(t *Type) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.collections[t])
}

// Range calls fn for every prototype in t's collection until fn returns
// false. The order is unspecified. The registry lock is held for the
// duration; fn must not mutate the registry.
func (r *Registry) Range(t *Type, fn func(Prototype) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.collections[t] {
		if !fn(p) {
			return
		}
	}
}

// ClearType drops every prototype loaded for t, without emitting events.
// Intended for full rebuilds when a backing document set is reloaded.
func (r *Registry) ClearType(t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[t]; ok {
		r.collections[t] = make(map[id.Erased]Prototype)
	}
}

// Clear drops every prototype in every collection, without emitting
// events. Registered types survive; only records are discarded.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t := range r.collections {
		r.collections[t] = make(map[id.Erased]Prototype)
	}
}

// Get recovers a typed record by identifier.
func Get[T any](r *Registry, key id.ID[T]) (Record[T], bool) {
	t, ok := TypeOf[T](r)
	if !ok {
		return Record[T]{}, false
	}
	p, ok := r.Get(t, key.Erase())
	if !ok {
		return Record[T]{}, false
	}
	return asRecord[T](p)
}

// GetByName recovers a typed record by name. Subject to the same
// retained-name constraint as Registry.GetByName.
func GetByName[T any](r *Registry, name string) (Record[T], bool) {
	return Get[T](r, id.NewID[T](name))
}

// Insert stores a typed record.
func Insert[T any](r *Registry, rec Record[T]) error {
	t, ok := TypeOf[T](r)
	if !ok {
		return protoreg.NewRegistryError("registry.Insert",
			fmt.Errorf("%w: %s", protoreg.ErrNotRegistered,
				reflect.TypeOf((*T)(nil)).Elem()))
	}
	return r.Insert(t, Prototype{
		Name: rec.Name.Erase(),
		Tags: rec.Tags,
		Data: rec.Data,
	})
}

// Remove deletes a typed record by identifier and returns it.
func Remove[T any](r *Registry, key id.ID[T]) (Record[T], error) {
	t, ok := TypeOf[T](r)
	if !ok {
		return Record[T]{}, protoreg.NewRegistryError("registry.Remove",
			fmt.Errorf("%w: %s", protoreg.ErrNotRegistered,
				reflect.TypeOf((*T)(nil)).Elem()))
	}
	p, err := r.Remove(t, key.Erase())
	if err != nil {
		return Record[T]{}, err
	}
	rec, ok := asRecord[T](p)
	if !ok {
		return Record[T]{}, protoreg.NewRegistryError("registry.Remove",
			fmt.Errorf("stored data is %T, not %s", p.Data,
				reflect.TypeOf((*T)(nil)).Elem()))
	}
	return rec, nil
}

// RemoveByName deletes a typed record by name and returns it.
func RemoveByName[T any](r *Registry, name string) (Record[T], error) {
	return Remove[T](r, id.NewID[T](name))
}

// asRecord rebuilds the typed record from its erased form.
func asRecord[T any](p Prototype) (Record[T], bool) {
	data, ok := p.Data.(T)
	if !ok {
		return Record[T]{}, false
	}
	return Record[T]{
		Name: id.RestoreNamed[T](p.Name.Name(), p.Name.Raw()),
		Tags: p.Tags,
		Data: data,
	}, true
}
