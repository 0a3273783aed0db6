package loader

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	protoreg "github.com/gamekit/protoreg"
	"github.com/gamekit/protoreg/document"
	"github.com/gamekit/protoreg/id"
	"github.com/gamekit/protoreg/registry"
	"github.com/gamekit/protoreg/resource"
)

var (
	handleType      = reflect.TypeOf(resource.Handle{})
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// FieldError identifies the payload field whose value could not be
// coerced into its declared type. It matches protoreg.ErrFieldDecode
// under errors.Is and unwraps to the underlying cause.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func (e *FieldError) Is(target error) bool {
	return target == protoreg.ErrFieldDecode
}

// decodeContext carries the per-document state field decoding needs:
// the source path reference fields resolve against, and the resource
// loader that turns resolved paths into handles.
type decodeContext struct {
	ctx       context.Context
	source    string
	resources resource.Loader
}

// decodeRecord constructs and populates an instance of t's shape from
// one parsed record and assembles the erased prototype.
func (l *Loader) decodeRecord(dc *decodeContext, t *registry.Type, rec document.Record) (registry.Prototype, error) {
	if rec.Name == "" {
		return registry.Prototype{}, protoreg.ErrMissingName
	}

	value := reflect.New(t.GoType()).Elem()
	if err := decodeStruct(dc, value, rec.Payload); err != nil {
		return registry.Prototype{}, err
	}

	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	return registry.Prototype{
		Name: id.NewErasedNamed(rec.Name),
		Tags: tags,
		Data: value.Interface(),
	}, nil
}

// decodeStruct populates v's fields from the payload map. Unknown
// payload keys are ignored; missing fields keep their zero value unless
// a default tag provides one. Embedded structs read from the same
// flattened payload.
func decodeStruct(dc *decodeContext, v reflect.Value, payload map[string]any) error {
	t := v.Type()

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
			if field.Type.Kind() == reflect.Pointer && field.Type.Elem().Kind() == reflect.Struct {
				elem := reflect.New(field.Type.Elem())
				if err := decodeStruct(dc, elem.Elem(), payload); err != nil {
					return err
				}
				v.Field(i).Set(elem)
				continue
			}
			if field.Type.Kind() == reflect.Struct {
				if err := decodeStruct(dc, v.Field(i), payload); err != nil {
					return err
				}
				continue
			}
			// Embedded non-struct types fall through and read from the
			// payload under their type name, as encoding/json does.
		}

		fieldName := field.Name
		if jsonTag != "" {
			if name := strings.Split(jsonTag, ",")[0]; name != "" {
				fieldName = name
			}
		}

		raw, present := payload[fieldName]
		if !present {
			if def, ok := field.Tag.Lookup("default"); ok {
				if err := setDefault(v.Field(i), def); err != nil {
					return &FieldError{Field: fieldName, Err: err}
				}
			}
			continue
		}

		if err := decodeValue(dc, v.Field(i), raw); err != nil {
			return &FieldError{Field: fieldName, Err: err}
		}

		if enum := field.Tag.Get("enum"); enum != "" && field.Type.Kind() == reflect.String {
			if err := checkEnum(v.Field(i).String(), enum); err != nil {
				return &FieldError{Field: fieldName, Err: err}
			}
		}
	}

	return nil
}

// decodeValue coerces one untyped payload value into v's declared type.
// The declared type drives the interpretation, not the value's own
// shape: a string aimed at a resource.Handle is a reference path, a
// string aimed at an identifier is hashed, and so on.
func decodeValue(dc *decodeContext, v reflect.Value, raw any) error {
	t := v.Type()

	// Reference fields: the value is a path relative to the source
	// document, resolved and handed to the resource loader. The handle
	// comes back immediately; the bytes arrive on their own time.
	if t == handleType {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("reference field expects a string path, got %T", raw)
		}
		if dc.resources == nil {
			return fmt.Errorf("reference field %q: no resource loader configured", s)
		}
		resolved := resource.Resolve(dc.source, s)
		v.Set(reflect.ValueOf(dc.resources.Load(dc.ctx, resolved)))
		return nil
	}

	// Types with custom JSON decoding (identifiers, time.Time, host
	// types) take the value through their own unmarshaler.
	if reflect.PointerTo(t).Implements(unmarshalerType) && v.CanAddr() {
		data, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		return v.Addr().Interface().(json.Unmarshaler).UnmarshalJSON(data)
	}

	switch t.Kind() {
	case reflect.Pointer:
		if raw == nil {
			v.SetZero()
			return nil
		}
		elem := reflect.New(t.Elem())
		if err := decodeValue(dc, elem.Elem(), raw); err != nil {
			return err
		}
		v.Set(elem)
		return nil

	case reflect.Struct:
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", raw)
		}
		return decodeStruct(dc, v, m)

	case reflect.Slice:
		list, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", raw)
		}
		out := reflect.MakeSlice(t, len(list), len(list))
		for i, item := range list {
			if err := decodeValue(dc, out.Index(i), item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		v.Set(out)
		return nil

	case reflect.Array:
		list, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", raw)
		}
		if len(list) != t.Len() {
			return fmt.Errorf("expected %d elements, got %d", t.Len(), len(list))
		}
		for i, item := range list {
			if err := decodeValue(dc, v.Index(i), item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return fmt.Errorf("map keys must be strings, got %s", t.Key())
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", raw)
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for key, item := range m {
			value := reflect.New(t.Elem()).Elem()
			if err := decodeValue(dc, value, item); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), value)
		}
		v.Set(out)
		return nil

	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		v.SetString(s)
		return nil

	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected boolean, got %T", raw)
		}
		v.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt64(raw)
		if !ok {
			return fmt.Errorf("expected integer, got %v (%T)", raw, raw)
		}
		if v.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, t)
		}
		v.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asInt64(raw)
		if !ok || n < 0 {
			return fmt.Errorf("expected unsigned integer, got %v (%T)", raw, raw)
		}
		if v.OverflowUint(uint64(n)) {
			return fmt.Errorf("value %d overflows %s", n, t)
		}
		v.SetUint(uint64(n))
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := asFloat64(raw)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		v.SetFloat(f)
		return nil

	case reflect.Interface:
		if raw == nil {
			v.SetZero()
			return nil
		}
		rv := reflect.ValueOf(raw)
		if !rv.Type().AssignableTo(t) {
			return fmt.Errorf("%T does not satisfy %s", raw, t)
		}
		v.Set(rv)
		return nil

	default:
		return fmt.Errorf("unsupported field type %s", t)
	}
}

// asInt64 accepts the integer representations the JSON and YAML parsers
// produce: float64 with no fractional part, plus the native integer
// kinds YAML emits.
func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// checkEnum validates a decoded string against an `enum` tag's allowed
// values.
func checkEnum(value, enum string) error {
	allowed := strings.Split(enum, ",")
	for _, a := range allowed {
		if value == strings.TrimSpace(a) {
			return nil
		}
	}
	return fmt.Errorf("value %q not one of %s", value, enum)
}

// setDefault writes a `default` tag literal into a field left out of
// the payload.
func setDefault(v reflect.Value, raw string) error {
	t := v.Type()
	for t.Kind() == reflect.Pointer {
		elem := reflect.New(t.Elem())
		v.Set(elem)
		v = elem.Elem()
		t = v.Type()
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid default %q: %w", raw, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid default %q: %w", raw, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid default %q: %w", raw, err)
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid default %q: %w", raw, err)
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("default tag unsupported for %s", t)
	}
	return nil
}
