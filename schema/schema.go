package schema

import (
	json "github.com/goccy/go-json"
)

// DraftURI is the meta-schema identifier emitted on root schemas.
const DraftURI = "http://json-schema.org/draft-07/schema#"

// JSON represents a JSON Schema definition.
// It provides a structured way to describe the documents the loader
// accepts, for consumption by editors and validators.
type JSON struct {
	Schema      string          `json:"$schema,omitempty"`
	Ref         string          `json:"$ref,omitempty"`
	Comment     string          `json:"$comment,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Type        TypeSet         `json:"type,omitempty"`
	Const       any             `json:"const,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
	Default     any             `json:"default,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Items       *JSON           `json:"items,omitempty"`
	MinItems    *int            `json:"minItems,omitempty"`
	MaxItems    *int            `json:"maxItems,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
	MinLength   *int            `json:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
	Format      string          `json:"format,omitempty"`
	OneOf       []JSON          `json:"oneOf,omitempty"`
	AnyOf       []JSON          `json:"anyOf,omitempty"`
	AllOf       []JSON          `json:"allOf,omitempty"`

	// AdditionalProperties constrains map-like objects. nil leaves the
	// keyword out entirely.
	AdditionalProperties *JSON `json:"additionalProperties,omitempty"`

	// Definitions holds the shared title -> schema table on root
	// documents; nested schemas point into it via $ref.
	Definitions map[string]JSON `json:"definitions,omitempty"`
}

// TypeSet is the value of a schema's "type" keyword. JSON Schema allows
// either a single type name or an array of them; a one-element TypeSet
// marshals as a bare string.
type TypeSet []string

// MarshalJSON emits a single type as a string and multiple types as an
// array, matching conventional schema output.
func (t TypeSet) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts both the string and the array form.
func (t *TypeSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TypeSet{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = TypeSet(many)
	return nil
}

// Nullable returns a copy of the schema that additionally accepts null.
// Referenced schemas keep their $ref and widen the accepted types; inline
// schemas get "null" appended to their type set.
func (s JSON) Nullable() JSON {
	if s.Ref != "" {
		return JSON{
			Type:    TypeSet{"object", "null"},
			Ref:     s.Ref,
			Comment: "optional value",
		}
	}
	out := s
	for _, t := range out.Type {
		if t == "null" {
			return out
		}
	}
	out.Type = append(append(TypeSet{}, out.Type...), "null")
	return out
}

// Render marshals the schema document with indentation.
func (s JSON) Render() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Any creates a schema that accepts any value.
func Any() JSON {
	return JSON{}
}

// String creates a schema for a string value.
func String() JSON {
	return JSON{Type: TypeSet{"string"}}
}

// StringWithDesc creates a schema for a string value with a description.
func StringWithDesc(desc string) JSON {
	return JSON{Type: TypeSet{"string"}, Description: desc}
}

// Int creates a schema for an integer value.
func Int() JSON {
	return JSON{Type: TypeSet{"integer"}}
}

// Number creates a schema for a numeric value.
func Number() JSON {
	return JSON{Type: TypeSet{"number"}}
}

// Bool creates a schema for a boolean value.
func Bool() JSON {
	return JSON{Type: TypeSet{"boolean"}}
}

// Array creates a schema for an array with the given item schema.
func Array(items JSON) JSON {
	return JSON{Type: TypeSet{"array"}, Items: &items}
}

// Object creates a schema for an object with the given properties and
// required property names.
func Object(properties map[string]JSON, required ...string) JSON {
	return JSON{Type: TypeSet{"object"}, Properties: properties, Required: required}
}

// Enum creates a schema restricted to the enumerated values.
func Enum(values ...any) JSON {
	return JSON{Enum: values}
}

// Const creates a schema matching exactly one literal value.
func Const(value any) JSON {
	return JSON{Const: value}
}

// Ref creates a schema referencing a definitions table entry by title.
func Ref(title string) JSON {
	return JSON{Ref: "#/definitions/" + title}
}
