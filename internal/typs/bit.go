package typs

import (
	"github.com/benreynwar/slvcodec/internal/symmath"
)

// Bit is std_logic: a single bit encoded as 0 or 1.
type Bit struct{}

func (Bit) Name() string { return "std_logic" }

func (Bit) Width() symmath.Expr { return symmath.Literal{Value: 1} }

func (Bit) Unconstrained() bool { return false }

func (b Bit) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	if data == nil {
		if !allowUndefined {
			return "", codecErrorf("std_logic value is undefined")
		}
		return "U", nil
	}
	v, ok := asInt(data)
	if !ok || (v != 0 && v != 1) {
		return "", codecErrorf("std_logic value must be 0 or 1, got %v", data)
	}
	if v == 1 {
		return "1", nil
	}
	return "0", nil
}

func (b Bit) FromSlv(slv string, generics Generics) (any, error) {
	v, rest, err := b.reduceSlv(slv, generics)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, codecErrorf("std_logic decode left %d unconsumed bits", len(rest))
	}
	return v, nil
}

func (Bit) reduceSlv(slv string, generics Generics) (any, string, error) {
	if len(slv) < 1 {
		return nil, "", codecErrorf("std_logic needs 1 bit, have %d", len(slv))
	}
	rest := slv[:len(slv)-1]
	switch slv[len(slv)-1] {
	case '1':
		return 1, rest, nil
	case '0':
		return 0, rest, nil
	default:
		return nil, rest, nil
	}
}

// Resolve lets Bit double as an unresolved type so the builtin packages can
// hold it in the same table as the types that do need resolution.
func (b Bit) Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error) {
	return b, nil
}

func (Bit) TypeDependencies() []string { return nil }
