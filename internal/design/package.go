// Package design resolves the declarations of packages and entities into
// concrete types and provides the entity-level codec that maps port values
// to and from flat bit strings.
package design

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/benreynwar/slvcodec/internal/resolve"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
)

// Use is a package dependency. Once resolved it holds a direct reference
// to the package it names.
type Use struct {
	Library string
	Unit    string
	Within  string
	Package *Package
}

// Package holds the resolved types and constants of one package.
type Package struct {
	Name      string
	Types     map[string]typs.Type
	Constants map[string]symmath.Expr
	Uses      map[string]Use
}

// UnresolvedPackage holds a package's declarations before its references
// to other packages have been resolved.
type UnresolvedPackage struct {
	Name      string
	Types     map[string]typs.Unresolved
	Constants map[string]symmath.Expr
	Uses      map[string]Use
}

// resolveUses replaces use clauses with references to resolved packages.
// Clauses that do not select "all" import nothing.
func resolveUses(uses map[string]Use, packages map[string]*Package) (map[string]Use, error) {
	resolved := make(map[string]Use, len(uses))
	for name, u := range uses {
		p, ok := packages[name]
		if !ok {
			return nil, resolve.Errorf("dependency package %s not found", name)
		}
		u.Package = p
		resolved[name] = u
	}
	return resolved, nil
}

// combineUses merges the types and constants imported by a set of resolved
// uses, rejecting name collisions between packages.
func combineUses(uses map[string]Use) (map[string]typs.Type, map[string]symmath.Expr, error) {
	types := make(map[string]typs.Type)
	constants := make(map[string]symmath.Expr)
	for _, name := range sortedUseNames(uses) {
		u := uses[name]
		if u.Within != "all" {
			continue
		}
		for tn, t := range u.Package.Types {
			if _, ok := types[tn]; ok {
				return nil, nil, resolve.Errorf("type %s is declared in more than one used package", tn)
			}
			types[tn] = t
		}
		for cn, c := range u.Package.Constants {
			if _, ok := constants[cn]; ok {
				return nil, nil, resolve.Errorf("constant %s is declared in more than one used package", cn)
			}
			constants[cn] = c
		}
	}
	return types, constants, nil
}

func sortedUseNames(uses map[string]Use) []string {
	names := make([]string, 0, len(uses))
	for name := range uses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves the package's constants and then its types against the
// already resolved packages it uses. With strict set, any constant or type
// that fails to resolve is an error; otherwise failures are dropped.
func (u *UnresolvedPackage) Resolve(packages map[string]*Package, reg *symmath.Registry, strict bool) (*Package, error) {
	uses, err := resolveUses(u.Uses, packages)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", u.Name, err)
	}
	availableTypes, availableConstants, err := combineUses(uses)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", u.Name, err)
	}

	constantDeps := make(map[string]*set.Set[string], len(u.Constants))
	for name, expr := range u.Constants {
		constantDeps[name] = set.From(symmath.SortedFreeVariables(expr))
	}
	constants, failedConstants, err := resolve.All(availableConstants, u.Constants, constantDeps,
		func(name string, expr symmath.Expr, available map[string]symmath.Expr) (symmath.Expr, error) {
			return typs.ResolveExpr(expr, available, reg)
		})
	if err != nil {
		return nil, fmt.Errorf("constants of package %s: %w", u.Name, err)
	}
	if strict {
		if ferr := resolve.FailedError(failedConstants); ferr != nil {
			return nil, fmt.Errorf("constants of package %s: %w", u.Name, ferr)
		}
	}

	allConstants := make(map[string]symmath.Expr, len(availableConstants)+len(constants))
	for name, c := range availableConstants {
		allConstants[name] = c
	}
	for name, c := range constants {
		allConstants[name] = c
	}

	typeDeps := make(map[string]*set.Set[string], len(u.Types))
	for name, t := range u.Types {
		typeDeps[name] = set.From(t.TypeDependencies())
	}
	types, failedTypes, err := resolve.All(availableTypes, u.Types, typeDeps,
		func(name string, t typs.Unresolved, available map[string]typs.Type) (typs.Type, error) {
			return t.Resolve(available, allConstants, reg)
		})
	if err != nil {
		return nil, fmt.Errorf("types of package %s: %w", u.Name, err)
	}
	if strict {
		if ferr := resolve.FailedError(failedTypes); ferr != nil {
			return nil, fmt.Errorf("types of package %s: %w", u.Name, ferr)
		}
	}

	return &Package{
		Name:      u.Name,
		Types:     types,
		Constants: constants,
		Uses:      uses,
	}, nil
}

// ResolvePackages resolves a set of packages against one another and the
// builtin packages, in dependency order.
func ResolvePackages(unresolved []*UnresolvedPackage, reg *symmath.Registry, strict bool) (map[string]*Package, error) {
	byName := make(map[string]*UnresolvedPackage, len(unresolved))
	deps := make(map[string]*set.Set[string], len(unresolved))
	for _, p := range unresolved {
		byName[p.Name] = p
		deps[p.Name] = set.From(sortedUseNames(p.Uses))
	}
	resolved, failed, err := resolve.All(BuiltinPackages(), byName, deps,
		func(name string, p *UnresolvedPackage, available map[string]*Package) (*Package, error) {
			return p.Resolve(available, reg, strict)
		})
	if err != nil {
		return nil, err
	}
	if strict {
		if ferr := resolve.FailedError(failed); ferr != nil {
			return nil, ferr
		}
	}
	builtin := BuiltinPackages()
	for name, p := range builtin {
		resolved[name] = p
	}
	return resolved, nil
}
