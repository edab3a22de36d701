// Package typparse turns declaration rows into unresolved types, parsing
// the textual constraints and subtype indications they carry.
package typparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benreynwar/slvcodec/internal/decl"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
)

var constraintRe = regexp.MustCompile(`(?is)^\s*\(\s*(.+?)\s+(to|downto)\s+(.+?)\s*\)\s*$`)

// ConstraintBounds parses an index constraint such as "(7 downto 0)" or
// "(0 to N-1)" and returns the low and high bound expressions.
func ConstraintBounds(text string) (low, high symmath.Expr, err error) {
	m := constraintRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, fmt.Errorf("cannot parse constraint %q", text)
	}
	return bounds(m[1], m[2], m[3])
}

func bounds(left, direction, right string) (low, high symmath.Expr, err error) {
	lowText, highText := left, right
	if strings.EqualFold(direction, "downto") {
		lowText, highText = right, left
	}
	low, err = symmath.Parse(lowText)
	if err != nil {
		return nil, nil, err
	}
	high, err = symmath.Parse(highText)
	if err != nil {
		return nil, nil, err
	}
	return low, high, nil
}

// ConstraintSize parses an index constraint and returns the element count,
// high + 1 - low, simplified.
func ConstraintSize(text string, reg *symmath.Registry) (symmath.Expr, error) {
	low, high, err := ConstraintBounds(text)
	if err != nil {
		return nil, err
	}
	size := symmath.Sum{Terms: []symmath.Term{
		{Coeff: 1, Expr: high},
		{Coeff: 1, Expr: symmath.Literal{Value: 1}},
		{Coeff: -1, Expr: low},
	}}
	return symmath.Simplify(size, reg), nil
}

// SplitMark splits a subtype indication such as "unsigned(7 downto 0)"
// into the type mark and its constraint. The constraint is "" when the
// indication is a bare name.
func SplitMark(indication string) (mark, constraint string) {
	indication = strings.TrimSpace(indication)
	if i := strings.IndexByte(indication, '('); i >= 0 {
		return strings.TrimSpace(indication[:i]), indication[i:]
	}
	return indication, ""
}

// SubtypeIndication parses a subtype indication from a field or port. A
// bare name comes back as ident; a constrained indication comes back as an
// anonymous unresolved subtype.
func SubtypeIndication(indication string, reg *symmath.Registry) (ident string, sub typs.Unresolved, err error) {
	mark, constraint := SplitMark(indication)
	if constraint == "" {
		return mark, nil, nil
	}
	size, err := ConstraintSize(constraint, reg)
	if err != nil {
		return "", nil, err
	}
	return "", typs.UnresolvedConstrainedArray{BaseIdent: mark, Size: size}, nil
}

// BuildType converts a type declaration row into an unresolved type.
func BuildType(row decl.TypeRow, reg *symmath.Registry) (typs.Unresolved, error) {
	switch row.Kind {
	case decl.KindEnumeration:
		if len(row.Literals) == 0 {
			return nil, fmt.Errorf("enumeration %s has no literals", row.Name)
		}
		return typs.NewEnumeration(row.Name, row.Literals), nil

	case decl.KindRecord:
		fields := make([]typs.UnresolvedField, 0, len(row.Fields))
		for _, f := range row.Fields {
			ident, sub, err := SubtypeIndication(f.Subtype, reg)
			if err != nil {
				return nil, fmt.Errorf("field %s of record %s: %w", f.Name, row.Name, err)
			}
			fields = append(fields, typs.UnresolvedField{Name: f.Name, TypeIdent: ident, Subtype: sub})
		}
		return typs.UnresolvedRecord{Ident: row.Name, Fields: fields}, nil

	case decl.KindArray:
		elemIdent, elemSub, err := SubtypeIndication(row.Subtype, reg)
		if err != nil {
			return nil, fmt.Errorf("element type of array %s: %w", row.Name, err)
		}
		if row.Constraint == "" {
			return typs.UnresolvedArray{Ident: row.Name, ElemIdent: elemIdent, Elem: elemSub}, nil
		}
		size, err := ConstraintSize(row.Constraint, reg)
		if err != nil {
			return nil, fmt.Errorf("bounds of array %s: %w", row.Name, err)
		}
		base := typs.UnresolvedArray{ElemIdent: elemIdent, Elem: elemSub}
		return typs.UnresolvedConstrainedArray{Ident: row.Name, Base: base, Size: size}, nil

	case decl.KindSubtype:
		mark, constraint := SplitMark(row.Subtype)
		if constraint == "" {
			constraint = row.Constraint
		}
		if constraint == "" {
			return nil, fmt.Errorf("subtype %s of %s has no constraint", row.Name, mark)
		}
		size, err := ConstraintSize(constraint, reg)
		if err != nil {
			return nil, fmt.Errorf("constraint of subtype %s: %w", row.Name, err)
		}
		return typs.UnresolvedConstrainedArray{Ident: row.Name, BaseIdent: mark, Size: size}, nil

	default:
		return nil, fmt.Errorf("type %s has unknown kind %q", row.Name, row.Kind)
	}
}
