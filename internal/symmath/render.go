package symmath

import (
	"strconv"
	"strings"
)

// Render produces a deterministic, minimally parenthesized textual form of
// the expression, valid as a VHDL arithmetic expression. Rendered text
// parses back to a value-equivalent expression (the tree shape may differ).
func Render(e Expr) string {
	switch v := e.(type) {
	case Literal:
		return strconv.Itoa(v.Value)
	case Variable:
		return v.Name
	case Power:
		return renderPower(v)
	case Product:
		parts := make([]string, len(v.Powers))
		for i, pw := range v.Powers {
			parts[i] = renderPower(pw)
		}
		return strings.Join(parts, "*")
	case Sum:
		return renderSum(v)
	case Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = Render(a)
		}
		return v.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

// renderPower writes repeated multiplication or division rather than an
// exponent operator, which the expression language does not admit.
func renderPower(p Power) string {
	base := Render(p.Base)
	switch {
	case p.Exponent == 1:
		return base
	case p.Exponent == 0 || base == "1":
		return "1"
	case p.Exponent > 0:
		parts := make([]string, p.Exponent)
		for i := range parts {
			parts[i] = base
		}
		return strings.Join(parts, "*")
	default:
		parts := make([]string, 1-p.Exponent)
		parts[0] = "1"
		for i := 1; i < len(parts); i++ {
			parts[i] = base
		}
		return strings.Join(parts, "/")
	}
}

func renderTerm(t Term) string {
	if lit, ok := t.Expr.(Literal); ok && lit.Value == 1 {
		return strconv.Itoa(t.Coeff)
	}
	switch t.Coeff {
	case 1:
		return Render(t.Expr)
	case -1:
		return "-" + Render(t.Expr)
	case 0:
		return "0"
	default:
		return strconv.Itoa(t.Coeff) + "*" + Render(t.Expr)
	}
}

func renderSum(s Sum) string {
	var b strings.Builder
	for i, t := range s.Terms {
		st := renderTerm(t)
		if i > 0 && !strings.HasPrefix(st, "-") {
			b.WriteByte('+')
		}
		b.WriteString(st)
	}
	if len(s.Terms) > 1 {
		return "(" + b.String() + ")"
	}
	return b.String()
}
