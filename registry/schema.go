package registry

import (
	"sort"

	"github.com/gamekit/protoreg/schema"
)

// Schema composes the top-level document schema across every registered
// type: one internally tagged branch per type (a constant "type"
// property plus the record framing and the flattened data shape),
// combined into a "PrototypeAny" union, with a root accepting either a
// single matching object or an array of them, the same shapes the
// document parser accepts.
func (r *Registry) Schema() schema.JSON {
	r.mu.RLock()
	types := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		types = append(types, t)
	}

	definitions := make(map[string]schema.JSON, len(r.gen.Definitions())+1)
	for title, s := range r.gen.Definitions() {
		definitions[title] = s
	}
	r.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool {
		return types[i].discriminant < types[j].discriminant
	})

	branches := make([]schema.JSON, 0, len(types))
	for _, t := range types {
		branches = append(branches, recordSchema(t))
	}

	definitions["PrototypeAny"] = schema.JSON{
		Title: "PrototypeAny",
		OneOf: branches,
	}

	anyRef := schema.Ref("PrototypeAny")
	return schema.JSON{
		Schema: schema.DraftURI,
		Title:  "Prototype",
		Type:   schema.TypeSet{"object", "array"},
		OneOf: []schema.JSON{
			anyRef,
			schema.Array(anyRef),
		},
		Definitions: definitions,
	}
}

// EmitSchema renders the composite schema as an indented JSON string.
func (r *Registry) EmitSchema() (string, error) {
	return r.Schema().Render()
}

// recordSchema builds one PrototypeAny branch: the record framing fields
// with the type discriminant pinned to a literal, merged with the data
// shape's own schema via allOf composition.
func recordSchema(t *Type) schema.JSON {
	return schema.JSON{
		Type: schema.TypeSet{"object"},
		Properties: map[string]schema.JSON{
			"type": schema.Const(t.discriminant),
			"name": {
				Type:    schema.TypeSet{"string"},
				Comment: "a prototype identifier",
			},
			"tags": {
				Type:    schema.TypeSet{"array"},
				Items:   &schema.JSON{Type: schema.TypeSet{"string"}},
				Default: []any{},
			},
		},
		Required: []string{"type", "name"},
		AllOf:    []schema.JSON{t.dataSchema},
	}
}
