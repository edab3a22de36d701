package symmath

import "log"

// maxSimplifyPasses bounds the simplifier. Failing to reach a fixed point
// within the bound only hurts readability of the rendered text, not
// correctness, so it warns instead of failing.
const maxSimplifyPasses = 5

// Simplify repeatedly folds ground sub-expressions, flattens nested sums
// and products, combines powers sharing a base and evaluates registered
// function calls with ground arguments, until a pass produces a
// structurally equal tree.
func Simplify(e Expr, reg *Registry) Expr {
	cur := e
	for i := 0; i < maxSimplifyPasses; i++ {
		next := simplifyOnce(cur, reg)
		if Equal(next, cur) {
			return next
		}
		cur = next
	}
	log.Printf("symmath: no fixed point after %d simplification passes: %s",
		maxSimplifyPasses, Render(cur))
	return cur
}

func simplifyOnce(e Expr, reg *Registry) Expr {
	switch v := e.(type) {
	case Literal, Variable:
		return e
	case Power:
		return simplifyPower(v, reg)
	case Product:
		return simplifyProduct(v, reg)
	case Sum:
		return simplifySum(v, reg)
	case Call:
		return simplifyCall(v, reg)
	}
	return e
}

func simplifyPower(p Power, reg *Registry) Expr {
	base := simplifyOnce(p.Base, reg)
	switch {
	case p.Exponent == 0:
		return Literal{Value: 1}
	case p.Exponent == 1:
		return base
	}
	if lit, ok := base.(Literal); ok {
		if p.Exponent > 0 {
			return Literal{Value: ipow(lit.Value, p.Exponent)}
		}
		if lit.Value == 1 || lit.Value == -1 {
			return Literal{Value: ipow(lit.Value, -p.Exponent)}
		}
	}
	// A power of a product distributes over its factors; the surrounding
	// product pass flattens the result.
	if prod, ok := base.(Product); ok {
		powers := make([]Power, len(prod.Powers))
		for i, pw := range prod.Powers {
			powers[i] = Power{Exponent: pw.Exponent * p.Exponent, Base: pw.Base}
		}
		return Product{Powers: powers}
	}
	return Power{Exponent: p.Exponent, Base: base}
}

func simplifyProduct(p Product, reg *Registry) Expr {
	num, den := 1, 1
	var order []string
	grouped := make(map[string]*Power)

	var add func(pw Power)
	add = func(pw Power) {
		if pw.Exponent == 0 {
			return
		}
		switch b := pw.Base.(type) {
		case Literal:
			if pw.Exponent > 0 {
				num *= ipow(b.Value, pw.Exponent)
			} else {
				den *= ipow(b.Value, -pw.Exponent)
			}
		case Product:
			for _, sub := range b.Powers {
				add(Power{Exponent: sub.Exponent * pw.Exponent, Base: sub.Base})
			}
		default:
			k := key(pw.Base)
			if g, ok := grouped[k]; ok {
				g.Exponent += pw.Exponent
			} else {
				order = append(order, k)
				grouped[k] = &Power{Exponent: pw.Exponent, Base: pw.Base}
			}
		}
	}
	for _, pw := range p.Powers {
		add(Power{Exponent: pw.Exponent, Base: simplifyOnce(pw.Base, reg)})
	}

	if num == 0 {
		return Literal{Value: 0}
	}
	if den != 0 {
		g := gcd(abs(num), abs(den))
		if g > 1 {
			num /= g
			den /= g
		}
		if den < 0 {
			num = -num
			den = -den
		}
	}

	var powers []Power
	for _, k := range order {
		if g := grouped[k]; g.Exponent != 0 {
			powers = append(powers, *g)
		}
	}
	if den != 1 {
		// Irreducible divisor; kept symbolic so the arithmetic stays exact.
		powers = append(powers, Power{Exponent: -1, Base: Literal{Value: den}})
	}

	var m Expr
	switch {
	case len(powers) == 0:
		return Literal{Value: num}
	case len(powers) == 1 && powers[0].Exponent == 1:
		m = powers[0].Base
	case len(powers) == 1:
		m = powers[0]
	default:
		m = Product{Powers: powers}
	}
	if num != 1 {
		return Sum{Terms: []Term{{Coeff: num, Expr: m}}}
	}
	return m
}

func simplifySum(s Sum, reg *Registry) Expr {
	intPart := 0
	var order []string
	grouped := make(map[string]*Term)

	var add func(coeff int, e Expr)
	add = func(coeff int, e Expr) {
		if coeff == 0 {
			return
		}
		switch v := e.(type) {
		case Literal:
			intPart += coeff * v.Value
		case Sum:
			for _, t := range v.Terms {
				add(coeff*t.Coeff, t.Expr)
			}
		default:
			k := key(e)
			if g, ok := grouped[k]; ok {
				g.Coeff += coeff
			} else {
				order = append(order, k)
				grouped[k] = &Term{Coeff: coeff, Expr: e}
			}
		}
	}
	for _, t := range s.Terms {
		add(t.Coeff, simplifyOnce(t.Expr, reg))
	}

	var terms []Term
	for _, k := range order {
		if g := grouped[k]; g.Coeff != 0 {
			terms = append(terms, *g)
		}
	}
	if intPart != 0 {
		terms = append(terms, Term{Coeff: 1, Expr: Literal{Value: intPart}})
	}
	switch {
	case len(terms) == 0:
		return Literal{Value: 0}
	case len(terms) == 1 && terms[0].Coeff == 1:
		return terms[0].Expr
	default:
		return Sum{Terms: terms}
	}
}

func simplifyCall(c Call, reg *Registry) Expr {
	args := make([]Expr, len(c.Args))
	ground := true
	values := make([]int, len(c.Args))
	for i, a := range c.Args {
		args[i] = simplifyOnce(a, reg)
		if lit, ok := args[i].(Literal); ok {
			values[i] = lit.Value
		} else {
			ground = false
		}
	}
	if ground {
		if fn, ok := reg.Lookup(c.Name); ok {
			if v, err := fn(values); err == nil {
				return Literal{Value: v}
			}
		}
	}
	return Call{Name: c.Name, Args: args}
}

func ipow(base, exp int) int {
	v := 1
	for i := 0; i < exp; i++ {
		v *= base
	}
	return v
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
