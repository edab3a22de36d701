// Package symmath parses, simplifies, substitutes into and evaluates the
// algebraic expressions that appear in VHDL width constraints and constant
// declarations (e.g. "N*2-1", "logceil(DEPTH)").
//
// Expressions are immutable trees over a closed set of node kinds. A fully
// ground expression (one with no free variables) always evaluates to an
// integer.
package symmath

import (
	"strconv"
	"strings"
)

// Expr is a node in an expression tree. The set of implementations is
// closed: Literal, Variable, Power, Product, Sum and Call.
type Expr interface {
	isExpr()
}

// Literal is an integer constant.
type Literal struct {
	Value int
}

// Variable is a free name: a package constant or an entity generic whose
// value is not yet known.
type Variable struct {
	Name string
}

// Power is an expression raised to a fixed integer exponent. Negative
// exponents represent division.
type Power struct {
	Exponent int
	Base     Expr
}

// Product is an ordered group of Powers that are multiplied together.
// After simplification a Product never contains a nested Product.
type Product struct {
	Powers []Power
}

// Term is one signed summand of a Sum: Coeff * Expr.
type Term struct {
	Coeff int
	Expr  Expr
}

// Sum is an ordered group of Terms that are added together. After
// simplification a Sum never contains a nested Sum.
type Sum struct {
	Terms []Term
}

// Call is a named function applied to argument expressions. The name is
// looked up in a Registry when the call is folded or evaluated.
type Call struct {
	Name string
	Args []Expr
}

func (Literal) isExpr()  {}
func (Variable) isExpr() {}
func (Power) isExpr()    {}
func (Product) isExpr()  {}
func (Sum) isExpr()      {}
func (Call) isExpr()     {}

// key returns a canonical encoding of an expression, used for structural
// equality and for grouping like terms during simplification.
func key(e Expr) string {
	var b strings.Builder
	writeKey(&b, e)
	return b.String()
}

func writeKey(b *strings.Builder, e Expr) {
	switch v := e.(type) {
	case Literal:
		b.WriteByte('l')
		b.WriteString(strconv.Itoa(v.Value))
	case Variable:
		b.WriteByte('v')
		b.WriteString(v.Name)
	case Power:
		b.WriteByte('p')
		b.WriteString(strconv.Itoa(v.Exponent))
		b.WriteByte('(')
		writeKey(b, v.Base)
		b.WriteByte(')')
	case Product:
		b.WriteString("m(")
		for _, pw := range v.Powers {
			writeKey(b, pw)
			b.WriteByte(';')
		}
		b.WriteByte(')')
	case Sum:
		b.WriteString("s(")
		for _, t := range v.Terms {
			b.WriteString(strconv.Itoa(t.Coeff))
			b.WriteByte(':')
			writeKey(b, t.Expr)
			b.WriteByte(';')
		}
		b.WriteByte(')')
	case Call:
		b.WriteByte('f')
		b.WriteString(v.Name)
		b.WriteByte('(')
		for _, a := range v.Args {
			writeKey(b, a)
			b.WriteByte(';')
		}
		b.WriteByte(')')
	}
}

// Equal reports whether two expressions are structurally identical.
func Equal(a, b Expr) bool {
	return key(a) == key(b)
}
