package typs

import (
	"fmt"
	"sort"

	"github.com/benreynwar/slvcodec/internal/resolve"
	"github.com/benreynwar/slvcodec/internal/symmath"
)

// Field is one element of a record.
type Field struct {
	Name string
	Type Type
}

// Record is a resolved record type. Encoded records place the first
// declared field in the least significant bits, so the concatenation runs
// over the fields in reverse declaration order.
type Record struct {
	name   string
	fields []Field
	width  symmath.Expr
}

// NewRecord builds a record from resolved fields. All field types must be
// constrained.
func NewRecord(name string, fields []Field, reg *symmath.Registry) (Record, error) {
	terms := make([]symmath.Term, 0, len(fields))
	for _, f := range fields {
		if f.Type.Unconstrained() {
			return Record{}, resolve.Errorf("field %s of record %s has unconstrained type %s", f.Name, name, f.Type.Name())
		}
		terms = append(terms, symmath.Term{Coeff: 1, Expr: f.Type.Width()})
	}
	width := symmath.Simplify(symmath.Sum{Terms: terms}, reg)
	return Record{name: name, fields: fields, width: width}, nil
}

func (r Record) Name() string { return r.name }

func (r Record) Width() symmath.Expr { return r.width }

func (Record) Unconstrained() bool { return false }

// Fields returns the fields in declaration order.
func (r Record) Fields() []Field { return r.fields }

func (r Record) ToSlv(data any, generics Generics, allowUndefined bool) (string, error) {
	values := map[string]any{}
	if data != nil {
		m, ok := data.(map[string]any)
		if !ok {
			return "", codecErrorf("record %s expects a map, got %v", r.name, data)
		}
		values = m
	}
	known := make(map[string]bool, len(r.fields))
	for _, f := range r.fields {
		known[f.Name] = true
	}
	var unknown []string
	for name := range values {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", codecErrorf("record %s has no fields named %v", r.name, unknown)
	}
	slv := ""
	for _, f := range r.fields {
		piece, err := f.Type.ToSlv(values[f.Name], generics, allowUndefined)
		if err != nil {
			return "", fmt.Errorf("field %s of record %s: %w", f.Name, r.name, err)
		}
		slv = piece + slv
	}
	return slv, nil
}

func (r Record) FromSlv(slv string, generics Generics) (any, error) {
	data, rest, err := r.reduceSlv(slv, generics)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, codecErrorf("decoding record %s left %d unconsumed bits", r.name, len(rest))
	}
	return data, nil
}

func (r Record) reduceSlv(slv string, generics Generics) (any, string, error) {
	values := make(map[string]any, len(r.fields))
	rest := slv
	for _, f := range r.fields {
		var v any
		var err error
		v, rest, err = f.Type.reduceSlv(rest, generics)
		if err != nil {
			return nil, rest, fmt.Errorf("field %s of record %s: %w", f.Name, r.name, err)
		}
		values[f.Name] = v
	}
	return values, rest, nil
}

// UnresolvedField pairs a field name with either a named type or an
// anonymous subtype.
type UnresolvedField struct {
	Name      string
	TypeIdent string     // named field type, or ""
	Subtype   Unresolved // anonymous subtype when TypeIdent is ""
}

// UnresolvedRecord is a record declaration whose field types are still
// names or unresolved subtypes.
type UnresolvedRecord struct {
	Ident  string
	Fields []UnresolvedField
}

func (u UnresolvedRecord) Name() string { return u.Ident }

func (u UnresolvedRecord) TypeDependencies() []string {
	var deps []string
	for _, f := range u.Fields {
		if f.TypeIdent != "" {
			deps = append(deps, f.TypeIdent)
		} else {
			deps = append(deps, f.Subtype.TypeDependencies()...)
		}
	}
	return deps
}

func (u UnresolvedRecord) Resolve(types map[string]Type, constants map[string]symmath.Expr, reg *symmath.Registry) (Type, error) {
	fields := make([]Field, 0, len(u.Fields))
	for _, f := range u.Fields {
		var t Type
		if f.TypeIdent != "" {
			var ok bool
			t, ok = types[f.TypeIdent]
			if !ok {
				return nil, resolve.Errorf("field %s of record %s: %s is not a known type", f.Name, u.Ident, f.TypeIdent)
			}
		} else {
			var err error
			t, err = f.Subtype.Resolve(types, constants, reg)
			if err != nil {
				return nil, fmt.Errorf("field %s of record %s: %w", f.Name, u.Ident, err)
			}
		}
		fields = append(fields, Field{Name: f.Name, Type: t})
	}
	rec, err := NewRecord(u.Ident, fields, reg)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
