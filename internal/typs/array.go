package typs

import (
	"fmt"

	"github.com/benreynwar/slvcodec/internal/resolve"
	"github.com/benreynwar/slvcodec/internal/symmath"
)

// Array is an unconstrained array type over a resolved element type. It can
// encode and decode slices of any length; only a constrained subtype of it
// has a width.
type Array struct {
	name string
	elem Type
	reg  *symmath.Registry
}

// NewArray declares an unconstrained array of elem.
func NewArray(name string, elem Type, reg *symmath.Registry) Array {
	return Array{name: name, elem: elem, reg: reg}
}

func (a Array) Name() string { return a.name }

func (Array) Width() symmath.Expr { return nil }

func (Array) Unconstrained() bool { return true }

// Element returns the element type.
func (a Array) Element() Type { return a.elem }

// ToSlv concatenates the encoded elements with the last element of the
// slice occupying the leftmost bits.
func (a Array) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	items, ok := data.([]any)
	if !ok {
		return "", codecErrorf("%s expects a slice, got %v", a.name, data)
	}
	slv := ""
	for i, item := range items {
		piece, err := a.elem.ToSlv(item, generics, allowUndefined)
		if err != nil {
			return "", fmt.Errorf("index %d of %s: %w", i, a.name, err)
		}
		slv = piece + slv
	}
	return slv, nil
}

func (a Array) FromSlv(slv string, generics Generics) (any, error) {
	elemWidth, err := Width(a.elem, generics, a.reg)
	if err != nil {
		return nil, fmt.Errorf("element width of %s: %w", a.name, err)
	}
	if elemWidth <= 0 || len(slv)%elemWidth != 0 {
		return nil, codecErrorf("%d bits do not divide into %d-bit elements of %s", len(slv), elemWidth, a.name)
	}
	n := len(slv) / elemWidth
	items := make([]any, n)
	rest := slv
	for i := 0; i < n; i++ {
		var item any
		item, rest, err = a.elem.reduceSlv(rest, generics)
		if err != nil {
			return nil, fmt.Errorf("index %d of %s: %w", i, a.name, err)
		}
		items[i] = item
	}
	return items, nil
}

func (a Array) reduceSlv(slv string, generics Generics) (any, string, error) {
	return nil, slv, codecErrorf("%s is unconstrained and cannot be decoded in place", a.name)
}

// ConstrainedArray is a subtype of an unconstrained array with a known
// number of elements.
type ConstrainedArray struct {
	name  string
	base  Array
	size  symmath.Expr
	width symmath.Expr
	reg   *symmath.Registry
}

// NewConstrainedArray constrains base to size elements.
func NewConstrainedArray(name string, base Array, size symmath.Expr, reg *symmath.Registry) ConstrainedArray {
	width := symmath.Simplify(symmath.Sum{Terms: []symmath.Term{{
		Coeff: 1,
		Expr: symmath.Product{Powers: []symmath.Power{
			{Exponent: 1, Base: size},
			{Exponent: 1, Base: base.elem.Width()},
		}},
	}}}, reg)
	return ConstrainedArray{name: name, base: base, size: size, width: width, reg: reg}
}

func (c ConstrainedArray) Name() string { return c.name }

func (c ConstrainedArray) Width() symmath.Expr { return c.width }

func (ConstrainedArray) Unconstrained() bool { return false }

// Size returns the element count expression.
func (c ConstrainedArray) Size() symmath.Expr { return c.size }

// Element returns the element type.
func (c ConstrainedArray) Element() Type { return c.base.elem }

// BaseName returns the name of the unconstrained array being constrained,
// or "" when the array shape was declared inline.
func (c ConstrainedArray) BaseName() string { return c.base.name }

// String renders the type the way it would be written in a declaration.
func (c ConstrainedArray) String() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("%s(%s-1 downto 0)", c.base.name, symmath.Render(c.size))
}

func (c ConstrainedArray) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	size, err := evalExpr(c.size, generics, c.reg)
	if err != nil {
		return "", fmt.Errorf("size of %s: %w", c.name, err)
	}
	if data == nil {
		if !allowUndefined {
			return "", codecErrorf("value of %s is undefined", c.name)
		}
		data = make([]any, size)
	}
	items, ok := data.([]any)
	if !ok {
		return "", codecErrorf("%s expects a slice, got %v", c.name, data)
	}
	if len(items) != size {
		return "", codecErrorf("%s expects %d elements, got %d", c.name, size, len(items))
	}
	return c.base.ToSlv(items, generics, allowUndefined)
}

func (c ConstrainedArray) FromSlv(slv string, generics Generics) (any, error) {
	data, rest, err := c.reduceSlv(slv, generics)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, codecErrorf("decoding %s left %d unconsumed bits", c.name, len(rest))
	}
	return data, nil
}

func (c ConstrainedArray) reduceSlv(slv string, generics Generics) (any, string, error) {
	size, err := evalExpr(c.size, generics, c.reg)
	if err != nil {
		return nil, slv, fmt.Errorf("size of %s: %w", c.name, err)
	}
	items := make([]any, size)
	rest := slv
	for i := 0; i < size; i++ {
		var item any
		item, rest, err = c.base.elem.reduceSlv(rest, generics)
		if err != nil {
			return nil, rest, fmt.Errorf("index %d of %s: %w", i, c.name, err)
		}
		items[i] = item
	}
	return items, rest, nil
}

// UnresolvedArray is an unconstrained array declaration. Its element type
// is either a name or an anonymous unresolved subtype.
type UnresolvedArray struct {
	Ident     string
	ElemIdent string     // named element type, or ""
	Elem      Unresolved // anonymous element subtype when ElemIdent is ""
}

func (u UnresolvedArray) Name() string { return u.Ident }

func (u UnresolvedArray) TypeDependencies() []string {
	if u.ElemIdent != "" {
		return []string{u.ElemIdent}
	}
	return u.Elem.TypeDependencies()
}

func (u UnresolvedArray) Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error) {
	var elem Type
	if u.ElemIdent != "" {
		var ok bool
		elem, ok = types[u.ElemIdent]
		if !ok {
			return nil, resolve.Errorf("%s is not a known type", u.ElemIdent)
		}
	} else {
		var err error
		elem, err = u.Elem.Resolve(types, constants, reg)
		if err != nil {
			return nil, fmt.Errorf("element type of %s: %w", u.Ident, err)
		}
	}
	if elem.Unconstrained() {
		return nil, resolve.Errorf("element type %s of %s is unconstrained", elem.Name(), u.Ident)
	}
	return NewArray(u.Ident, elem, reg), nil
}

// UnresolvedConstrainedArray is a subtype applying a size constraint to a
// base type, referenced by name or given inline. The base may turn out to
// be an array or a vector family.
type UnresolvedConstrainedArray struct {
	Ident     string
	BaseIdent string     // named base type, or ""
	Base      Unresolved // anonymous base when BaseIdent is ""
	Size      symmath.Expr
}

func (u UnresolvedConstrainedArray) Name() string { return u.Ident }

func (u UnresolvedConstrainedArray) TypeDependencies() []string {
	if u.BaseIdent != "" {
		return []string{u.BaseIdent}
	}
	return u.Base.TypeDependencies()
}

func (u UnresolvedConstrainedArray) Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error) {
	var base Type
	if u.BaseIdent != "" {
		var ok bool
		base, ok = types[u.BaseIdent]
		if !ok {
			return nil, resolve.Errorf("%s is not a known type", u.BaseIdent)
		}
	} else {
		var err error
		base, err = u.Base.Resolve(types, constants, reg)
		if err != nil {
			return nil, fmt.Errorf("base type of %s: %w", u.Ident, err)
		}
	}
	size, err := ResolveExpr(u.Size, constants, reg)
	if err != nil {
		return nil, fmt.Errorf("size of %s: %w", u.Ident, err)
	}
	switch b := base.(type) {
	case Array:
		return NewConstrainedArray(u.Ident, b, size, reg), nil
	case VectorFamily:
		return NewVector(u.Ident, b.signedness, size, reg), nil
	default:
		return nil, resolve.Errorf("cannot constrain %s, it already has a fixed width", base.Name())
	}
}
