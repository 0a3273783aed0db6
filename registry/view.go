package registry

import (
	"github.com/gamekit/protoreg/id"
)

// View is the read-only facade over a Registry. It exposes lookup and
// iteration but no mutation, and it never emits events; change
// notification is only meaningful for observers of mutation, not for
// read access.
type View struct {
	r *Registry
}

// View returns the read-only facade.
func (r *Registry) View() View {
	return View{r: r}
}

// Resolve looks up the type handle registered under discriminant.
func (v View) Resolve(discriminant string) (*Type, bool) {
	return v.r.Resolve(discriminant)
}

// Types returns every registered type handle.
func (v View) Types() []*Type {
	return v.r.Types()
}

// Get looks up a prototype by identifier.
func (v View) Get(t *Type, key id.Erased) (Prototype, bool) {
	return v.r.Get(t, key)
}

// GetByName looks up a prototype by hashing the given name.
func (v View) GetByName(t *Type, name string) (Prototype, bool) {
	return v.r.GetByName(t, name)
}

// Len returns the number of prototypes loaded for t.
func (v View) Len(t *Type) int {
	return v.r.Len(t)
}

// Range calls fn for every prototype in t's collection until fn returns
// false.
func (v View) Range(t *Type, fn func(Prototype) bool) {
	v.r.Range(t, fn)
}
