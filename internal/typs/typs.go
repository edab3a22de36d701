// Package typs models VHDL types in their unresolved and resolved forms and
// implements the bit-string codec that converts values to and from the flat
// '0'/'1'/'U' encoding used by the generated VHDL conversion functions.
//
// An unresolved type still references other types and constants by name.
// Resolving it against dictionaries of known types and constants produces an
// immutable resolved type whose width is a ground expression, or one whose
// only remaining free variables are entity generics.
package typs

import (
	"fmt"

	"github.com/benreynwar/slvcodec/internal/resolve"
	"github.com/benreynwar/slvcodec/internal/symmath"
)

// Generics supplies concrete values for the generic parameters that may
// still appear symbolically in resolved widths.
type Generics map[string]int

// Type is a fully resolved type.
type Type interface {
	// Name returns the declared identifier, or "" for anonymous subtypes.
	Name() string
	// Width returns the bit width as an expression. The expression is
	// ground except for generic names. Unconstrained types return nil.
	Width() symmath.Expr
	// Unconstrained reports whether the type has no defined length and is
	// therefore illegal as a port or field type.
	Unconstrained() bool
	// ToSlv encodes a value into exactly Width bits of '0'/'1'/'U'.
	ToSlv(data any, generics Generics, allowUndefined bool) (string, error)
	// FromSlv decodes a bit string, consuming it exactly.
	FromSlv(slv string, generics Generics) (any, error)

	// reduceSlv decodes this type's bits from the trailing end of slv and
	// returns the decoded value together with the unconsumed prefix.
	reduceSlv(slv string, generics Generics) (any, string, error)
}

// Unresolved is a type whose references to other types and constants are
// still names.
type Unresolved interface {
	Name() string
	// TypeDependencies lists the type names that must be resolved first.
	TypeDependencies() []string
	Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error)
}

// Generic is a named, typed parameter of an entity. It stays a free
// variable in width expressions until instantiation supplies a value.
type Generic struct {
	Name     string
	TypeMark string
	Default  symmath.Expr // nil if no default
}

// CodecError reports a range, shape or name mismatch during encoding or
// decoding. As it propagates outward it is wrapped with field, port and
// entity context, so the final message names the path to the bad value.
type CodecError struct {
	Msg string
}

func (e *CodecError) Error() string {
	return e.Msg
}

func codecErrorf(format string, args ...any) *CodecError {
	return &CodecError{Msg: fmt.Sprintf(format, args...)}
}

// Width evaluates a resolved type's width to an integer under the given
// generic values.
func Width(t Type, generics Generics, reg *symmath.Registry) (int, error) {
	if t.Unconstrained() {
		return 0, resolve.Errorf("type %s is unconstrained and has no width", t.Name())
	}
	return evalExpr(t.Width(), generics, reg)
}

// evalExpr substitutes generic values into an expression and evaluates it.
func evalExpr(e symmath.Expr, generics Generics, reg *symmath.Registry) (int, error) {
	env := make(map[string]symmath.Expr, len(generics))
	for name, v := range generics {
		env[name] = symmath.Literal{Value: v}
	}
	ground := symmath.Simplify(symmath.Substitute(e, env), reg)
	v, err := symmath.Eval(ground, reg)
	if err != nil {
		return 0, fmt.Errorf("evaluating %s: %w", symmath.Render(e), err)
	}
	return v, nil
}

// ResolveExpr substitutes the known constants into an expression, failing
// if any referenced name is absent from the environment.
func ResolveExpr(e symmath.Expr, constants map[string]symmath.Expr, reg *symmath.Registry) (symmath.Expr, error) {
	var missing []string
	for _, name := range symmath.SortedFreeVariables(e) {
		if _, ok := constants[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, resolve.Errorf("missing constants %v", missing)
	}
	return symmath.Simplify(symmath.Substitute(e, constants), reg), nil
}

// asInt accepts the integer representations that reach the codec from Go
// callers and decoded JSON.
func asInt(data any) (int, bool) {
	switch v := data.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
