package design

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benreynwar/slvcodec/internal/resolve"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
)

// Port directions.
const (
	DirIn  = "in"
	DirOut = "out"
)

// defaultClockNames are the port names recognized as clocks, and excluded
// from the port codec, when no override is configured.
var defaultClockNames = map[string]bool{"clk": true, "clock": true}

// IsClock reports whether a port name is treated as a clock by default.
func IsClock(name string) bool {
	return defaultClockNames[name]
}

// Port is a resolved entity port.
type Port struct {
	Name      string
	Direction string
	Type      typs.Type
}

// UnresolvedPort is a port whose type is still a name or an unresolved
// anonymous subtype.
type UnresolvedPort struct {
	Name      string
	Direction string
	TypeIdent string
	Subtype   typs.Unresolved
}

// UnresolvedEntity holds an entity's generics, ports and package
// dependencies before resolution.
type UnresolvedEntity struct {
	Name     string
	Generics []typs.Generic
	Ports    []UnresolvedPort
	Uses     map[string]Use
}

// Entity is an entity whose port types are fully resolved. Port order is
// declaration order.
type Entity struct {
	Name     string
	Generics []typs.Generic
	Ports    []Port
	Uses     map[string]Use

	reg    *symmath.Registry
	clocks map[string]bool // nil means the default clock names
}

// Resolve resolves the entity's ports against the resolved packages. The
// generics stay symbolic: they join the constant namespace as free
// variables, so port widths may still mention them. Without opts.Strict,
// ports that fail to resolve are dropped instead of failing the entity.
func (u *UnresolvedEntity) Resolve(packages map[string]*Package, reg *symmath.Registry, opts Options) (*Entity, error) {
	uses, err := resolveUses(u.Uses, packages)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", u.Name, err)
	}
	availableTypes, constants, err := combineUses(uses)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", u.Name, err)
	}
	for _, g := range u.Generics {
		if _, ok := constants[g.Name]; ok {
			return nil, resolve.Errorf("entity %s: generic %s collides with a constant of the same name", u.Name, g.Name)
		}
		constants[g.Name] = symmath.Variable{Name: g.Name}
	}

	ports := make([]Port, 0, len(u.Ports))
	for _, p := range u.Ports {
		resolved, perr := resolvePort(p, availableTypes, constants, reg)
		if perr != nil {
			if opts.Strict {
				return nil, fmt.Errorf("entity %s: port %s: %w", u.Name, p.Name, perr)
			}
			continue
		}
		ports = append(ports, resolved)
	}
	var clocks map[string]bool
	if len(opts.ClockNames) > 0 {
		clocks = make(map[string]bool, len(opts.ClockNames))
		for _, name := range opts.ClockNames {
			clocks[name] = true
		}
	}
	return &Entity{
		Name:     u.Name,
		Generics: u.Generics,
		Ports:    ports,
		Uses:     uses,
		reg:      reg,
		clocks:   clocks,
	}, nil
}

func resolvePort(p UnresolvedPort, types map[string]typs.Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Port, error) {
	direction := p.Direction
	if direction == "" {
		direction = DirIn
	}
	var t typs.Type
	if p.TypeIdent != "" {
		var ok bool
		t, ok = types[p.TypeIdent]
		if !ok {
			return Port{}, resolve.Errorf("type %s is not known, perhaps a use clause is missing", p.TypeIdent)
		}
	} else {
		var err error
		t, err = p.Subtype.Resolve(types, constants, reg)
		if err != nil {
			return Port{}, err
		}
	}
	if t.Unconstrained() {
		return Port{}, resolve.Errorf("port type %s is unconstrained", t.Name())
	}
	return Port{Name: p.Name, Direction: direction, Type: t}, nil
}

// isClock reports whether a port name is excluded from the codec as a
// clock, honoring a configured override.
func (e *Entity) isClock(name string) bool {
	if e.clocks == nil {
		return IsClock(name)
	}
	return e.clocks[name]
}

// codecPorts returns the non-clock ports with the given direction, in
// declaration order.
func (e *Entity) codecPorts(direction string) []Port {
	var ports []Port
	for _, p := range e.Ports {
		if p.Direction == direction && !e.isClock(p.Name) {
			ports = append(ports, p)
		}
	}
	return ports
}

// InputPorts returns the non-clock input ports in declaration order.
func (e *Entity) InputPorts() []Port { return e.codecPorts(DirIn) }

// OutputPorts returns the non-clock output ports in declaration order.
func (e *Entity) OutputPorts() []Port { return e.codecPorts(DirOut) }

// InputsToSlv encodes a value per input port into one bit string. The
// first declared port occupies the least significant bits. Missing ports
// encode as undefined; values for ports that do not exist are an error.
func (e *Entity) InputsToSlv(inputs map[string]any, generics typs.Generics) (string, error) {
	ports := e.InputPorts()
	known := make(map[string]bool, len(ports))
	slv := ""
	for _, p := range ports {
		known[p.Name] = true
		piece, err := p.Type.ToSlv(inputs[p.Name], generics, true)
		if err != nil {
			return "", fmt.Errorf("port %s of entity %s: %w", p.Name, e.Name, err)
		}
		slv = piece + slv
	}
	var unknown []string
	for name := range inputs {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", fmt.Errorf("entity %s has no input ports named %v", e.Name, unknown)
	}
	return slv, nil
}

// portsFromSlv decodes the ports with the given direction from the
// trailing end of slv.
func (e *Entity) portsFromSlv(slv string, generics typs.Generics, direction string) (map[string]any, error) {
	slv = strings.TrimSpace(slv)
	values := make(map[string]any)
	pos := 0
	for _, p := range e.codecPorts(direction) {
		width, err := typs.Width(p.Type, generics, e.reg)
		if err != nil {
			return nil, fmt.Errorf("port %s of entity %s: %w", p.Name, e.Name, err)
		}
		if pos+width > len(slv) {
			return nil, fmt.Errorf("entity %s: %d bits are too few for its %s ports", e.Name, len(slv), direction)
		}
		piece := slv[len(slv)-pos-width : len(slv)-pos]
		pos += width
		value, err := p.Type.FromSlv(piece, generics)
		if err != nil {
			return nil, fmt.Errorf("port %s of entity %s: %w", p.Name, e.Name, err)
		}
		values[p.Name] = value
	}
	return values, nil
}

// OutputsFromSlv decodes the output port values from a bit string.
func (e *Entity) OutputsFromSlv(slv string, generics typs.Generics) (map[string]any, error) {
	return e.portsFromSlv(slv, generics, DirOut)
}

// InputsFromSlv decodes the input port values from a bit string.
func (e *Entity) InputsFromSlv(slv string, generics typs.Generics) (map[string]any, error) {
	return e.portsFromSlv(slv, generics, DirIn)
}

// GenericValues fills in defaults for generics missing from the supplied
// values, evaluating default expressions against the supplied ones.
func (e *Entity) GenericValues(supplied typs.Generics) (typs.Generics, error) {
	env := make(map[string]symmath.Expr, len(supplied))
	for name, v := range supplied {
		env[name] = symmath.Literal{Value: v}
	}
	out := make(typs.Generics, len(e.Generics))
	for _, g := range e.Generics {
		if v, ok := supplied[g.Name]; ok {
			out[g.Name] = v
			continue
		}
		if g.Default == nil {
			return nil, fmt.Errorf("entity %s: no value for generic %s", e.Name, g.Name)
		}
		v, err := symmath.Eval(symmath.Simplify(symmath.Substitute(g.Default, env), e.reg), e.reg)
		if err != nil {
			return nil, fmt.Errorf("entity %s: default of generic %s: %w", e.Name, g.Name, err)
		}
		out[g.Name] = v
	}
	return out, nil
}
