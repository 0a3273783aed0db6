package schema

import (
	"path"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gamekit/protoreg/id"
	"github.com/gamekit/protoreg/resource"
)

var (
	identType    = reflect.TypeOf((*id.Ident)(nil)).Elem()
	handleType   = reflect.TypeOf(resource.Handle{})
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// Generator derives JSON schemas from Go types by reflection.
//
// Named struct types are emitted once into a shared definitions table
// keyed by a canonical title and referenced via $ref everywhere else, so
// a shape used in ten places costs one emission. The table entry is
// written as a placeholder before the generator descends into the
// struct's fields, which lets a self-referential shape resolve to a $ref
// back to the in-progress entry instead of recursing forever.
//
// Supported types:
//   - struct: object schema with properties from exported fields
//   - slice: array schema; fixed-size array: array with item bounds
//   - map: object schema with additionalProperties
//   - pointer: schema of the pointee, widened to accept null
//   - string, int*, uint*, float*, bool: primitive schemas
//   - resource.Handle: string schema (a resource path)
//   - id identifiers: string schema (a prototype name)
//   - time.Time / time.Duration: formatted string schemas
//   - interface{}/any: empty schema (allows any)
//
// Struct tags:
//   - `json:"name"`: property name; `json:"-"` skips the field
//   - `json:"name,omitempty"`: field is optional (not in required list)
//   - `description:"..."`: property description
//   - `default:"..."`: default value; the field is not required
//   - `enum:"a,b,c"`: restricts a string field to the listed values
type Generator struct {
	defs   map[string]JSON
	titles map[reflect.Type]string
	byName map[string]reflect.Type
}

// NewGenerator creates an empty Generator.
func NewGenerator() *Generator {
	return &Generator{
		defs:   make(map[string]JSON),
		titles: make(map[reflect.Type]string),
		byName: make(map[string]reflect.Type),
	}
}

// Definitions returns the shared title -> schema table accumulated by
// every Schema call so far. The map is live; callers compose it into a
// root document before rendering.
func (g *Generator) Definitions() map[string]JSON {
	return g.defs
}

// SchemaOf generates a schema for the type of the given value.
func (g *Generator) SchemaOf(v any) JSON {
	if v == nil {
		return Any()
	}
	return g.Schema(reflect.TypeOf(v))
}

// Schema generates a schema for t. Named struct types come back as $ref
// entries into Definitions.
func (g *Generator) Schema(t reflect.Type) JSON {
	switch {
	case t == handleType:
		return JSON{Type: TypeSet{"string"}, Comment: "a resource path"}
	case t.Implements(identType):
		return JSON{Type: TypeSet{"string"}, Default: "", Comment: "a prototype identifier"}
	case t == timeType:
		return JSON{Type: TypeSet{"string"}, Format: "date-time"}
	case t == durationType:
		return JSON{Type: TypeSet{"string"}, Format: "duration"}
	}

	switch t.Kind() {
	case reflect.Pointer:
		return g.Schema(t.Elem()).Nullable()
	case reflect.Struct:
		if t.Name() == "" {
			return g.structSchema(t)
		}
		return g.namedStructSchema(t)
	case reflect.Slice:
		items := g.Schema(t.Elem())
		return JSON{Type: TypeSet{"array"}, Items: &items}
	case reflect.Array:
		items := g.Schema(t.Elem())
		n := t.Len()
		return JSON{Type: TypeSet{"array"}, Items: &items, MinItems: &n, MaxItems: &n}
	case reflect.Map:
		values := g.Schema(t.Elem())
		return JSON{Type: TypeSet{"object"}, AdditionalProperties: &values}
	case reflect.String:
		return String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSON{Type: TypeSet{"integer"}, Format: t.Kind().String()}
	case reflect.Float32, reflect.Float64:
		return JSON{Type: TypeSet{"number"}, Format: t.Kind().String()}
	case reflect.Bool:
		return Bool()
	case reflect.Interface:
		return Any()
	default:
		return Any()
	}
}

// namedStructSchema memoizes the struct schema under its title and
// returns a reference to it.
func (g *Generator) namedStructSchema(t reflect.Type) JSON {
	title := g.titleFor(t)

	if _, done := g.defs[title]; !done {
		// Placeholder before descending so cycles terminate on a $ref
		// back to this entry.
		g.defs[title] = JSON{Title: title}

		s := g.structSchema(t)
		s.Title = title
		g.defs[title] = s
	}

	return Ref(title)
}

// titleFor assigns a stable canonical title to t. Distinct types sharing
// a bare name get package-qualified titles.
func (g *Generator) titleFor(t reflect.Type) string {
	if title, ok := g.titles[t]; ok {
		return title
	}

	title := t.Name()
	if other, taken := g.byName[title]; taken && other != t {
		title = path.Base(t.PkgPath()) + "." + t.Name()
	} else {
		g.byName[title] = t
	}

	g.titles[t] = title
	return title
}

// structSchema builds the object schema for a struct type. Embedded
// structs are flattened into the enclosing object via allOf composition.
func (g *Generator) structSchema(t reflect.Type) JSON {
	properties := make(map[string]JSON)
	var required []string
	var flattened []JSON

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		if field.Anonymous && jsonTag == "" {
			flattened = append(flattened, g.Schema(field.Type))
			continue
		}

		fieldName := field.Name
		isOmitempty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
			for _, part := range parts[1:] {
				if part == "omitempty" {
					isOmitempty = true
					break
				}
			}
		}

		fieldSchema := g.Schema(field.Type)

		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, v := range strings.Split(enum, ",") {
				fieldSchema.Enum = append(fieldSchema.Enum, strings.TrimSpace(v))
			}
		}

		hasDefault := false
		if def, ok := field.Tag.Lookup("default"); ok {
			hasDefault = true
			fieldSchema.Default = parseDefault(field.Type, def)
		}

		properties[fieldName] = fieldSchema

		// Optional, defaulted and nullable fields are not required.
		if !isOmitempty && !hasDefault && field.Type.Kind() != reflect.Pointer {
			required = append(required, fieldName)
		}
	}

	object := JSON{Type: TypeSet{"object"}, Properties: properties, Required: required}
	if len(flattened) == 0 {
		return object
	}
	return JSON{AllOf: append(flattened, object)}
}

// parseDefault coerces a `default` tag literal into the field's kind so
// it renders as the right JSON type. Unparseable literals stay strings.
func parseDefault(t reflect.Type, raw string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
