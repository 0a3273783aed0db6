// Package query filters registry contents with CEL expressions.
//
// Expressions see three variables per prototype: name (string), type
// (the discriminant, string) and tags (list of string). A filter must
// evaluate to bool.
//
//	f, err := query.Compile(`type == "sword" && "legendary" in tags`)
//	matches := query.Select(reg.View(), f)
package query

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	protoreg "github.com/gamekit/protoreg"
	"github.com/gamekit/protoreg/registry"
)

// Filter is a compiled prototype predicate.
type Filter struct {
	expr string
	prg  cel.Program
}

// Match reports whether one prototype satisfies the filter.
type Match struct {
	Type      *registry.Type
	Prototype registry.Prototype
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("type", cel.StringType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
	)
}

// Compile parses and type-checks a filter expression.
func Compile(expr string) (*Filter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, protoreg.NewConfigurationError("query.Compile", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, protoreg.NewConfigurationError("query.Compile", issues.Err()).
			WithContext(map[string]any{"expression": expr})
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, protoreg.NewConfigurationError("query.Compile",
			fmt.Errorf("expression yields %s, want bool", ast.OutputType())).
			WithContext(map[string]any{"expression": expr})
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, protoreg.NewConfigurationError("query.Compile", err)
	}

	return &Filter{expr: expr, prg: prg}, nil
}

// MustCompile is Compile that panics on error. For package-level
// filters with fixed expressions.
func MustCompile(expr string) *Filter {
	f, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Eval applies the filter to one prototype of the given type.
func (f *Filter) Eval(t *registry.Type, p registry.Prototype) (bool, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	out, _, err := f.prg.Eval(map[string]any{
		"name": p.Name.Name(),
		"type": t.Discriminant(),
		"tags": tags,
	})
	if err != nil {
		return false, protoreg.NewConfigurationError("query.Eval", err).
			WithContext(map[string]any{"expression": f.expr, "name": p.Name.Name()})
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, protoreg.NewConfigurationError("query.Eval",
			errors.New("expression did not yield bool"))
	}
	return b, nil
}

// Select collects every prototype in the view that satisfies the
// filter, scanning each registered type's collection in turn.
// Evaluation errors stop the scan.
func Select(v registry.View, f *Filter) ([]Match, error) {
	var (
		matches []Match
		evalErr error
	)

	for _, t := range v.Types() {
		v.Range(t, func(p registry.Prototype) bool {
			ok, err := f.Eval(t, p)
			if err != nil {
				evalErr = err
				return false
			}
			if ok {
				matches = append(matches, Match{Type: t, Prototype: p})
			}
			return true
		})
		if evalErr != nil {
			return nil, evalErr
		}
	}

	return matches, nil
}

// SelectType collects the matching prototypes of one type only.
func SelectType(v registry.View, t *registry.Type, f *Filter) ([]Match, error) {
	var (
		matches []Match
		evalErr error
	)

	v.Range(t, func(p registry.Prototype) bool {
		ok, err := f.Eval(t, p)
		if err != nil {
			evalErr = err
			return false
		}
		if ok {
			matches = append(matches, Match{Type: t, Prototype: p})
		}
		return true
	})

	if evalErr != nil {
		return nil, evalErr
	}
	return matches, nil
}
