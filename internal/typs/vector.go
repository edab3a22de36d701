package typs

import (
	"fmt"

	"github.com/benreynwar/slvcodec/internal/symmath"
)

// Signedness selects how a vector's bits map to integers.
type Signedness int

const (
	// Plain vectors (std_logic_vector) carry unsigned values.
	Plain Signedness = iota
	// UnsignedNum is numeric_std unsigned.
	UnsignedNum
	// SignedNum is numeric_std signed, two's complement.
	SignedNum
)

// VectorFamily is an unconstrained vector type such as std_logic_vector or
// numeric_std's unsigned and signed. It only becomes encodable once a
// subtype constrains its length.
type VectorFamily struct {
	name       string
	signedness Signedness
}

// NewVectorFamily declares an unconstrained vector type.
func NewVectorFamily(name string, signedness Signedness) VectorFamily {
	return VectorFamily{name: name, signedness: signedness}
}

func (f VectorFamily) Name() string { return f.name }

func (VectorFamily) Width() symmath.Expr { return nil }

func (VectorFamily) Unconstrained() bool { return true }

func (f VectorFamily) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	return "", codecErrorf("%s is unconstrained and cannot be encoded", f.name)
}

func (f VectorFamily) FromSlv(slv string, generics Generics) (any, error) {
	return nil, codecErrorf("%s is unconstrained and cannot be decoded", f.name)
}

func (f VectorFamily) reduceSlv(slv string, generics Generics) (any, string, error) {
	return nil, slv, codecErrorf("%s is unconstrained and cannot be decoded", f.name)
}

func (f VectorFamily) Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error) {
	return f, nil
}

func (VectorFamily) TypeDependencies() []string { return nil }

// Vector is a constrained vector of a known size, encoding an integer.
type Vector struct {
	name       string
	signedness Signedness
	size       symmath.Expr
	reg        *symmath.Registry
}

// NewVector constrains a vector family to a size in bits.
func NewVector(name string, signedness Signedness, size symmath.Expr, reg *symmath.Registry) Vector {
	return Vector{name: name, signedness: signedness, size: size, reg: reg}
}

func (v Vector) Name() string { return v.name }

func (v Vector) Width() symmath.Expr { return v.size }

func (Vector) Unconstrained() bool { return false }

// Signedness reports how this vector's bits map to integers.
func (v Vector) Signedness() Signedness { return v.signedness }

func (v Vector) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	width, err := evalExpr(v.size, generics, v.reg)
	if err != nil {
		return "", fmt.Errorf("width of %s: %w", v.name, err)
	}
	if data == nil {
		if !allowUndefined {
			return "", codecErrorf("value of %s is undefined", v.name)
		}
		return undefinedSlv(width), nil
	}
	n, ok := asInt(data)
	if !ok {
		return "", codecErrorf("%s expects an integer, got %v", v.name, data)
	}
	if v.signedness == SignedNum {
		if width < 1 {
			return "", codecErrorf("%s has width %d, too narrow for a signed value", v.name, width)
		}
		lo, hi := -(1 << (width - 1)), 1<<(width-1)-1
		if n < lo || n > hi {
			return "", codecErrorf("value %d out of range [%d, %d] for %s", n, lo, hi, v.name)
		}
		n = SintToUint(n, width)
	} else {
		hi := 1<<width - 1
		if n < 0 || n > hi {
			return "", codecErrorf("value %d out of range [0, %d] for %s", n, hi, v.name)
		}
	}
	return UintToSlv(n, width), nil
}

func (v Vector) FromSlv(slv string, generics Generics) (any, error) {
	data, rest, err := v.reduceSlv(slv, generics)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, codecErrorf("decoding %s left %d unconsumed bits", v.name, len(rest))
	}
	return data, nil
}

func (v Vector) reduceSlv(slv string, generics Generics) (any, string, error) {
	width, err := evalExpr(v.size, generics, v.reg)
	if err != nil {
		return nil, slv, fmt.Errorf("width of %s: %w", v.name, err)
	}
	if len(slv) < width {
		return nil, slv, codecErrorf("%s needs %d bits, have %d", v.name, width, len(slv))
	}
	rest := slv[:len(slv)-width]
	n, ok := SlvToUint(slv[len(slv)-width:])
	if !ok {
		return nil, rest, nil
	}
	if v.signedness == SignedNum {
		n = UintToSint(n, width)
	}
	return n, rest, nil
}
