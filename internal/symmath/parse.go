package symmath

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// The parser mirrors the convention used by the generated VHDL: tokens are
// folded to literals, grouped by parentheses, then by function calls, then
// by multiplication and division, and finally by addition and subtraction.

// item is an element of a partially parsed expression: either a raw token
// (operator, identifier, comma) or an already-parsed sub-expression.
type item any

// group is a parenthesized run of items.
type group struct {
	items []item
}

// Parse converts expression text into an expression tree. The result is not
// simplified; see ParseAndSimplify.
func Parse(text string) (Expr, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Text: text, Msg: "empty expression"}
	}
	items, err := foldLiterals(text, tokens)
	if err != nil {
		return nil, err
	}
	items, err = groupParentheses(text, items)
	if err != nil {
		return nil, err
	}
	return finish(text, items)
}

// ParseAndSimplify tokenizes, parses and simplifies in one step.
func ParseAndSimplify(text string, reg *Registry) (Expr, error) {
	e, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Simplify(e, reg), nil
}

// foldLiterals converts numeric tokens to Literal nodes and quoted
// bit-pattern tokens to opaque variables. A decimal literal equal to its
// integer truncation is accepted as that integer; any other decimal is an
// error, since widths must be integral.
func foldLiterals(text string, tokens []string) ([]item, error) {
	items := make([]item, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok == "":
			continue
		case unicode.IsDigit(rune(tok[0])):
			if strings.ContainsRune(tok, '.') {
				f, err := strconv.ParseFloat(tok, 64)
				if err != nil || f != float64(int(f)) {
					return nil, &ParseError{Text: text, Msg: fmt.Sprintf("non-integral literal %q", tok)}
				}
				items = append(items, Literal{Value: int(f)})
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &ParseError{Text: text, Msg: fmt.Sprintf("bad integer literal %q", tok)}
			}
			items = append(items, Literal{Value: n})
		case tok[0] == '"':
			// Bit-pattern constants such as "001" take no part in width
			// arithmetic; they pass through as opaque names.
			items = append(items, Variable{Name: tok})
		default:
			items = append(items, tok)
		}
	}
	return items, nil
}

// groupParentheses nests runs of items between balanced parentheses into
// group items.
func groupParentheses(text string, items []item) ([]item, error) {
	var out []item
	depth := 0
	var stack []item
	for _, it := range items {
		tok, isTok := it.(string)
		switch {
		case isTok && tok == "(":
			if depth == 0 {
				stack = nil
			} else {
				stack = append(stack, it)
			}
			depth++
		case isTok && tok == ")":
			switch {
			case depth == 0:
				return nil, &ParseError{Text: text, Msg: "more closing than opening parentheses"}
			case depth == 1:
				sub, err := groupParentheses(text, stack)
				if err != nil {
					return nil, err
				}
				out = append(out, &group{items: sub})
				stack = nil
			default:
				stack = append(stack, it)
			}
			depth--
		case depth > 0:
			stack = append(stack, it)
		default:
			out = append(out, it)
		}
	}
	if depth > 0 {
		return nil, &ParseError{Text: text, Msg: "unclosed parenthesis"}
	}
	return out, nil
}

// finish runs the call, multiplication and addition stages over a flat run
// of items and returns the single resulting expression.
func finish(text string, items []item) (Expr, error) {
	items, err := recognizeCalls(text, items)
	if err != nil {
		return nil, err
	}
	// Collapse remaining groups and bare identifiers.
	for i, it := range items {
		switch v := it.(type) {
		case *group:
			e, err := finish(text, v.items)
			if err != nil {
				return nil, err
			}
			items[i] = e
		case string:
			if v == "," {
				return nil, &ParseError{Text: text, Msg: "unexpected comma"}
			}
			if isIdentifier(v) {
				items[i] = Variable{Name: v}
			}
		}
	}
	items, err = groupMultiplication(text, items)
	if err != nil {
		return nil, err
	}
	return groupAddition(text, items)
}

// recognizeCalls turns an identifier immediately followed by a
// parenthesized group into a Call with comma-separated arguments. Nested
// calls are handled when the argument items are finished.
func recognizeCalls(text string, items []item) ([]item, error) {
	var out []item
	i := 0
	for i < len(items) {
		tok, isTok := items[i].(string)
		if isTok && isIdentifier(tok) && i+1 < len(items) {
			if g, isGroup := items[i+1].(*group); isGroup {
				args, err := splitArguments(text, g.items)
				if err != nil {
					return nil, err
				}
				out = append(out, Call{Name: tok, Args: args})
				i += 2
				continue
			}
		}
		out = append(out, items[i])
		i++
	}
	return out, nil
}

func splitArguments(text string, items []item) ([]Expr, error) {
	var args []Expr
	var current []item
	flush := func() error {
		if len(current) == 0 {
			return &ParseError{Text: text, Msg: "empty function argument"}
		}
		e, err := finish(text, current)
		if err != nil {
			return err
		}
		args = append(args, e)
		current = nil
		return nil
	}
	for _, it := range items {
		if tok, isTok := it.(string); isTok && tok == "," {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, it)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return args, nil
}

// groupMultiplication replaces each run of items separated by '*' and '/'
// with a Product of Powers: exponent +1 for '*', -1 for '/'.
func groupMultiplication(text string, items []item) ([]item, error) {
	var out []item
	var run []item
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		hasOp := false
		for _, it := range run {
			if tok, isTok := it.(string); isTok && (tok == "*" || tok == "/") {
				hasOp = true
			}
		}
		if !hasOp {
			out = append(out, run...)
			run = nil
			return nil
		}
		if len(run)%2 != 1 {
			return &ParseError{Text: text, Msg: "malformed multiplication"}
		}
		first, ok := run[0].(Expr)
		if !ok {
			return &ParseError{Text: text, Msg: "malformed multiplication"}
		}
		powers := []Power{{Exponent: 1, Base: first}}
		for i := 1; i < len(run); i += 2 {
			op, opOK := run[i].(string)
			operand, exprOK := run[i+1].(Expr)
			if !opOK || !exprOK {
				return &ParseError{Text: text, Msg: "malformed multiplication"}
			}
			switch op {
			case "*":
				powers = append(powers, Power{Exponent: 1, Base: operand})
			case "/":
				powers = append(powers, Power{Exponent: -1, Base: operand})
			default:
				return &ParseError{Text: text, Msg: fmt.Sprintf("unexpected operator %q", op)}
			}
		}
		out = append(out, Product{Powers: powers})
		run = nil
		return nil
	}
	for _, it := range items {
		if tok, isTok := it.(string); isTok && (tok == "+" || tok == "-") {
			if err := flush(); err != nil {
				return nil, err
			}
			out = append(out, it)
			continue
		}
		run = append(run, it)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// groupAddition folds the remaining '+'/'-' separated items into a signed
// Sum. Consecutive signs multiply, so "a - -b" adds b.
func groupAddition(text string, items []item) (Expr, error) {
	var terms []Term
	sign := 1
	pending := false // a value is expected (sign seen or at start)
	for _, it := range items {
		if tok, isTok := it.(string); isTok {
			switch tok {
			case "+":
				if !pending {
					sign = 1
					pending = true
				}
			case "-":
				if pending {
					sign = -sign
				} else {
					sign = -1
					pending = true
				}
			default:
				return nil, &ParseError{Text: text, Msg: fmt.Sprintf("unexpected token %q", tok)}
			}
			continue
		}
		e, ok := it.(Expr)
		if !ok {
			return nil, &ParseError{Text: text, Msg: "malformed expression"}
		}
		if len(terms) > 0 && !pending {
			return nil, &ParseError{Text: text, Msg: "missing operator between terms"}
		}
		terms = append(terms, Term{Coeff: sign, Expr: e})
		sign = 1
		pending = false
	}
	if pending {
		return nil, &ParseError{Text: text, Msg: "dangling operator"}
	}
	if len(terms) == 0 {
		return nil, &ParseError{Text: text, Msg: "empty expression"}
	}
	if len(terms) == 1 && terms[0].Coeff == 1 {
		return terms[0].Expr, nil
	}
	return Sum{Terms: terms}, nil
}

func isIdentifier(tok string) bool {
	if tok == "" {
		return false
	}
	c := rune(tok[0])
	return unicode.IsLetter(c) || c == '_'
}
