package protoreg

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMalformedDocument indicates a document's top-level structure is
	// invalid JSON/YAML or matches neither the single-record nor the
	// list-of-records shape. Fatal to that document.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrUnknownDiscriminant indicates a record's type tag is not present
	// in the type registry. The record is skipped; siblings still load.
	ErrUnknownDiscriminant = errors.New("unknown discriminant")

	// ErrFieldDecode indicates a payload field's value could not be
	// coerced to its declared type. Only that record is dropped.
	ErrFieldDecode = errors.New("field decode failed")

	// ErrDuplicateIdentifier indicates an insert for an identifier that
	// already exists in the target type's collection. The original entry
	// is retained.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrNotFound indicates a lookup or remove of an absent identifier.
	ErrNotFound = errors.New("prototype not found")

	// ErrNotRegistered indicates an operation against a type that was
	// never registered during setup.
	ErrNotRegistered = errors.New("type not registered")

	// ErrMissingName indicates a record without the required name field.
	ErrMissingName = errors.New("record has no name")
)

// Error kinds categorize errors by their type.
const (
	// KindParse represents errors in a document's top-level structure.
	KindParse = "parse"

	// KindDecode represents errors coercing payload values into a
	// registered shape.
	KindDecode = "decode"

	// KindRegistry represents insert/lookup/remove errors against the
	// prototype registry.
	KindRegistry = "registry"

	// KindResource represents errors resolving reference fields to
	// loadable resources.
	KindResource = "resource"

	// KindConfiguration represents errors in setup or manifest loading.
	KindConfiguration = "configuration"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
type Error struct {
	// Op is the operation that failed (e.g., "Loader.LoadDocument",
	// "Registry.Insert").
	Op string

	// Kind categorizes the error (e.g., KindParse, KindRegistry).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include the source document path, record name, or field.
	Context map[string]any
}

// Error implements the error interface, returning a formatted message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protoreg: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("protoreg: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("protoreg: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and
// errors.As() to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or on a template Error carrying just a Kind.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the provided context
// merged in. Useful for attaching the source document or record name
// as an error travels up the pipeline.
func (e *Error) WithContext(ctx map[string]any) *Error {
	out := *e
	if out.Context == nil {
		out.Context = make(map[string]any, len(ctx))
	}
	for k, v := range ctx {
		out.Context[k] = v
	}
	return &out
}

// NewParseError creates a new Error with KindParse.
func NewParseError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindParse, Err: err}
}

// NewDecodeError creates a new Error with KindDecode.
func NewDecodeError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindDecode, Err: err}
}

// NewRegistryError creates a new Error with KindRegistry.
func NewRegistryError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindRegistry, Err: err}
}

// NewResourceError creates a new Error with KindResource.
func NewResourceError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindResource, Err: err}
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}
