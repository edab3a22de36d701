package symmath

import (
	"fmt"
	"math"
)

// Func is an integer function that can appear by name in expressions.
type Func func(args []int) (int, error)

// Registry maps function names to their implementations. Each parsing
// context owns its own Registry, so tests and callers can register extra
// functions without interfering with one another.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// DefaultRegistry returns a registry holding the builtin functions that the
// generated VHDL uses in width expressions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	logceil := unary(func(n int) int { return Logceil(n) })
	r.funcs["logceil"] = logceil
	r.funcs["clog2"] = logceil
	r.funcs["slvcodec_logceil"] = logceil
	r.funcs["logceil_1to0"] = unary(func(n int) int { return LogceilFrom0(n) })
	// real and integer are identity casts on the integers we work over.
	r.funcs["real"] = unary(func(n int) int { return n })
	r.funcs["integer"] = unary(func(n int) int { return n })
	r.funcs["ceil"] = unary(func(n int) int { return n })
	r.funcs["pow2"] = func(args []int) (int, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("pow2 takes 1 argument, got %d", len(args))
		}
		if args[0] < 0 {
			return 0, fmt.Errorf("pow2 of negative exponent %d", args[0])
		}
		return 1 << args[0], nil
	}
	r.funcs["maximum"] = func(args []int) (int, error) {
		if len(args) == 0 {
			return 0, fmt.Errorf("maximum of no arguments")
		}
		v := args[0]
		for _, a := range args[1:] {
			if a > v {
				v = a
			}
		}
		return v, nil
	}
	r.funcs["minimum"] = func(args []int) (int, error) {
		if len(args) == 0 {
			return 0, fmt.Errorf("minimum of no arguments")
		}
		v := args[0]
		for _, a := range args[1:] {
			if a < v {
				v = a
			}
		}
		return v, nil
	}
	return r
}

func unary(f func(int) int) Func {
	return func(args []int) (int, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return f(args[0]), nil
	}
}

// Register adds a function under the given name. Registering a name twice
// is an error.
func (r *Registry) Register(name string, fn Func) error {
	if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("function %q is already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.funcs[name]
	return fn, ok
}

// Logceil returns the number of bits needed to represent integers in the
// range 0 to n-1. Logceil of 0, 1 and 2 is defined to be 1.
func Logceil(n int) int {
	if n <= 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// LogceilFrom0 is the variant of Logceil where values below 2 need 0 bits.
func LogceilFrom0(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}
