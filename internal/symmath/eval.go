package symmath

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Eval computes the integer value of a ground expression. It returns an
// UnresolvedError if any free variable remains, and an error if the
// arithmetic does not stay integral (a division that does not divide
// evenly) or if a function call names an unregistered function.
func Eval(e Expr, reg *Registry) (int, error) {
	switch v := e.(type) {
	case Literal:
		return v.Value, nil
	case Variable:
		return 0, &UnresolvedError{Names: []string{v.Name}}
	case Power:
		b, err := Eval(v.Base, reg)
		if err != nil {
			return 0, err
		}
		if v.Exponent >= 0 {
			return ipow(b, v.Exponent), nil
		}
		p := ipow(b, -v.Exponent)
		if p == 0 {
			return 0, fmt.Errorf("division by zero in %s", Render(e))
		}
		if 1%p != 0 {
			return 0, fmt.Errorf("%s does not evaluate to an integer", Render(e))
		}
		return 1 / p, nil
	case Product:
		num, den := 1, 1
		for _, pw := range v.Powers {
			b, err := Eval(pw.Base, reg)
			if err != nil {
				return 0, err
			}
			if pw.Exponent >= 0 {
				num *= ipow(b, pw.Exponent)
			} else {
				den *= ipow(b, -pw.Exponent)
			}
		}
		if den == 0 {
			return 0, fmt.Errorf("division by zero in %s", Render(e))
		}
		if num%den != 0 {
			return 0, fmt.Errorf("%d does not divide evenly by %d in %s", num, den, Render(e))
		}
		return num / den, nil
	case Sum:
		total := 0
		for _, t := range v.Terms {
			tv, err := Eval(t.Expr, reg)
			if err != nil {
				return 0, err
			}
			total += t.Coeff * tv
		}
		return total, nil
	case Call:
		fn, ok := reg.Lookup(v.Name)
		if !ok {
			return 0, &ParseError{Text: v.Name, Msg: "unknown function"}
		}
		args := make([]int, len(v.Args))
		for i, a := range v.Args {
			av, err := Eval(a, reg)
			if err != nil {
				return 0, err
			}
			args[i] = av
		}
		return fn(args)
	}
	return 0, fmt.Errorf("cannot evaluate %T", e)
}

// Substitute replaces every variable whose name is a key of env with the
// mapped expression. Unmapped variables pass through unchanged, which is
// how generics stay symbolic while constants are threaded in.
func Substitute(e Expr, env map[string]Expr) Expr {
	switch v := e.(type) {
	case Literal:
		return v
	case Variable:
		if sub, ok := env[v.Name]; ok {
			return sub
		}
		return v
	case Power:
		return Power{Exponent: v.Exponent, Base: Substitute(v.Base, env)}
	case Product:
		powers := make([]Power, len(v.Powers))
		for i, pw := range v.Powers {
			powers[i] = Power{Exponent: pw.Exponent, Base: Substitute(pw.Base, env)}
		}
		return Product{Powers: powers}
	case Sum:
		terms := make([]Term, len(v.Terms))
		for i, t := range v.Terms {
			terms[i] = Term{Coeff: t.Coeff, Expr: Substitute(t.Expr, env)}
		}
		return Sum{Terms: terms}
	case Call:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, env)
		}
		return Call{Name: v.Name, Args: args}
	}
	return e
}

// FreeVariables collects the names of all free variables in the
// expression. Quoted bit-pattern literals contribute no names.
func FreeVariables(e Expr) *set.Set[string] {
	names := set.New[string](0)
	collectFree(e, names)
	return names
}

func collectFree(e Expr, names *set.Set[string]) {
	switch v := e.(type) {
	case Literal:
	case Variable:
		if !strings.HasPrefix(v.Name, `"`) {
			names.Insert(v.Name)
		}
	case Power:
		collectFree(v.Base, names)
	case Product:
		for _, pw := range v.Powers {
			collectFree(pw.Base, names)
		}
	case Sum:
		for _, t := range v.Terms {
			collectFree(t.Expr, names)
		}
	case Call:
		for _, a := range v.Args {
			collectFree(a, names)
		}
	}
}

// SortedFreeVariables returns the free variable names in sorted order, for
// deterministic error messages.
func SortedFreeVariables(e Expr) []string {
	names := FreeVariables(e).Slice()
	sort.Strings(names)
	return names
}
