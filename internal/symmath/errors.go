package symmath

import (
	"fmt"
	"strings"
)

// ParseError reports malformed expression text, including syntax the
// expression language deliberately does not support (such as "**").
type ParseError struct {
	Text string // the offending text
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %s", e.Text, e.Msg)
}

// UnresolvedError reports that Eval was called on an expression that still
// contains free variables. The caller can recover by substituting values
// for the named variables first.
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("expression is not ground: unresolved names %s",
		strings.Join(e.Names, ", "))
}
