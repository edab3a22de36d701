package design

import (
	"fmt"

	"github.com/benreynwar/slvcodec/internal/decl"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typparse"
	"github.com/benreynwar/slvcodec/internal/typs"
)

func buildUses(rows []decl.UseRow) (map[string]Use, error) {
	uses := make(map[string]Use, len(rows))
	for _, row := range rows {
		if _, ok := uses[row.Unit]; ok {
			return nil, fmt.Errorf("duplicate use clause for package %s", row.Unit)
		}
		if row.Within != "all" {
			return nil, fmt.Errorf("use %s.%s.%s: only whole-package imports (use %s.%s.all) are supported",
				row.Library, row.Unit, row.Within, row.Library, row.Unit)
		}
		uses[row.Unit] = Use{Library: row.Library, Unit: row.Unit, Within: row.Within}
	}
	return uses, nil
}

// BuildPackage parses a package declaration row into an unresolved
// package.
func BuildPackage(row decl.PackageRow, reg *symmath.Registry) (*UnresolvedPackage, error) {
	uses, err := buildUses(row.Uses)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", row.Name, err)
	}
	constants := make(map[string]symmath.Expr, len(row.Constants))
	for _, c := range row.Constants {
		if _, ok := constants[c.Name]; ok {
			return nil, fmt.Errorf("package %s: duplicate constant %s", row.Name, c.Name)
		}
		expr, err := symmath.Parse(c.Expression)
		if err != nil {
			return nil, fmt.Errorf("package %s: constant %s: %w", row.Name, c.Name, err)
		}
		constants[c.Name] = expr
	}
	types := make(map[string]typs.Unresolved, len(row.Types))
	for _, t := range row.Types {
		if _, ok := types[t.Name]; ok {
			return nil, fmt.Errorf("package %s: duplicate type %s", row.Name, t.Name)
		}
		u, err := typparse.BuildType(t, reg)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", row.Name, err)
		}
		types[t.Name] = u
	}
	return &UnresolvedPackage{
		Name:      row.Name,
		Types:     types,
		Constants: constants,
		Uses:      uses,
	}, nil
}

// BuildEntity parses an entity declaration row into an unresolved entity.
func BuildEntity(row decl.EntityRow, reg *symmath.Registry) (*UnresolvedEntity, error) {
	uses, err := buildUses(row.Uses)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", row.Name, err)
	}
	generics := make([]typs.Generic, 0, len(row.Generics))
	for _, g := range row.Generics {
		generic := typs.Generic{Name: g.Name, TypeMark: g.Type}
		if g.Default != "" {
			expr, err := symmath.Parse(g.Default)
			if err != nil {
				return nil, fmt.Errorf("entity %s: default of generic %s: %w", row.Name, g.Name, err)
			}
			generic.Default = expr
		}
		generics = append(generics, generic)
	}
	ports := make([]UnresolvedPort, 0, len(row.Ports))
	for _, p := range row.Ports {
		ident, sub, err := typparse.SubtypeIndication(p.Subtype, reg)
		if err != nil {
			return nil, fmt.Errorf("entity %s: port %s: %w", row.Name, p.Name, err)
		}
		ports = append(ports, UnresolvedPort{
			Name:      p.Name,
			Direction: p.Direction,
			TypeIdent: ident,
			Subtype:   sub,
		})
	}
	return &UnresolvedEntity{
		Name:     row.Name,
		Generics: generics,
		Ports:    ports,
		Uses:     uses,
	}, nil
}

// Design holds the resolved packages and entities of one set of
// declaration tables.
type Design struct {
	Packages map[string]*Package
	Entities map[string]*Entity
}

// Options is the resolution policy chosen by the caller.
type Options struct {
	// Strict makes unresolvable constants, types and ports fatal instead
	// of dropped.
	Strict bool
	// ClockNames overrides the port names excluded from the codec. Empty
	// means the defaults, clk and clock.
	ClockNames []string
}

// Resolve builds and resolves every package and entity in the tables.
func Resolve(tables *decl.Tables, reg *symmath.Registry, opts Options) (*Design, error) {
	unresolved := make([]*UnresolvedPackage, 0, len(tables.Packages))
	for _, row := range tables.Packages {
		p, err := BuildPackage(row, reg)
		if err != nil {
			return nil, err
		}
		unresolved = append(unresolved, p)
	}
	packages, err := ResolvePackages(unresolved, reg, opts.Strict)
	if err != nil {
		return nil, err
	}
	entities := make(map[string]*Entity, len(tables.Entities))
	for _, row := range tables.Entities {
		u, err := BuildEntity(row, reg)
		if err != nil {
			return nil, err
		}
		e, err := u.Resolve(packages, reg, opts)
		if err != nil {
			return nil, err
		}
		entities[e.Name] = e
	}
	return &Design{Packages: packages, Entities: entities}, nil
}
