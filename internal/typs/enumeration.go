package typs

import (
	"strings"

	"github.com/benreynwar/slvcodec/internal/symmath"
)

// Enumeration encodes one of a fixed set of literals as the unsigned index
// of the literal, in as many bits as the literal count needs. It has no
// unresolved form.
type Enumeration struct {
	name     string
	literals []string
	width    int
}

// NewEnumeration declares an enumeration. Literals are compared case
// insensitively, the way VHDL identifiers are.
func NewEnumeration(name string, literals []string) Enumeration {
	lowered := make([]string, len(literals))
	for i, lit := range literals {
		lowered[i] = strings.ToLower(lit)
	}
	return Enumeration{name: name, literals: lowered, width: symmath.Logceil(len(literals))}
}

func (e Enumeration) Name() string { return e.name }

func (e Enumeration) Width() symmath.Expr { return symmath.Literal{Value: e.width} }

func (Enumeration) Unconstrained() bool { return false }

// Literals returns the lowercased literals in declaration order.
func (e Enumeration) Literals() []string { return e.literals }

func (e Enumeration) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	if data == nil {
		if !allowUndefined {
			return "", codecErrorf("value of %s is undefined", e.name)
		}
		return undefinedSlv(e.width), nil
	}
	s, ok := data.(string)
	if !ok {
		return "", codecErrorf("%s expects a literal name, got %v", e.name, data)
	}
	s = strings.ToLower(s)
	for i, lit := range e.literals {
		if lit == s {
			return UintToSlv(i, e.width), nil
		}
	}
	return "", codecErrorf("%q is not a literal of %s (have %v)", s, e.name, e.literals)
}

func (e Enumeration) FromSlv(slv string, generics Generics) (any, error) {
	data, rest, err := e.reduceSlv(slv, generics)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, codecErrorf("decoding %s left %d unconsumed bits", e.name, len(rest))
	}
	return data, nil
}

func (e Enumeration) reduceSlv(slv string, generics Generics) (any, string, error) {
	if len(slv) < e.width {
		return nil, slv, codecErrorf("%s needs %d bits, have %d", e.name, e.width, len(slv))
	}
	rest := slv[:len(slv)-e.width]
	i, ok := SlvToUint(slv[len(slv)-e.width:])
	if !ok {
		return nil, rest, nil
	}
	if i >= len(e.literals) {
		return nil, rest, codecErrorf("index %d has no literal in %s", i, e.name)
	}
	return e.literals[i], rest, nil
}

func (e Enumeration) Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error) {
	return e, nil
}

func (Enumeration) TypeDependencies() []string { return nil }
