// Package generator emits VHDL packages of to_slvcodec and from_slvcodec
// functions for the types of a resolved package, mirroring the layout the
// codec uses: the first record field and the first array element occupy
// the least significant bits.
package generator

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/benreynwar/slvcodec/internal/design"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
)

const widthConstantTemplate = "  constant %s_slvcodecwidth: natural := %s;"

func functionDeclarations(name string) string {
	return fmt.Sprintf(`  function to_slvcodec (constant data: %s) return std_logic_vector;
  function from_slvcodec (constant slv: std_logic_vector) return %s;`, name, name)
}

var recordTemplate = template.Must(template.New("record").Parse(
	`  function to_slvcodec (constant data: {{.Name}}) return std_logic_vector is
    variable slv: std_logic_vector({{.Name}}_slvcodecwidth-1 downto 0);
    constant w0: natural := 0;
{{- range .Fields}}
    constant {{.High}}: natural := {{.Low}} + {{.Width}};
{{- end}}
  begin
{{- range .Fields}}
    slv({{.High}}-1 downto {{.Low}}) := to_slvcodec(data.{{.Name}});
{{- end}}
    return slv;
  end function;

  function from_slvcodec (constant slv: std_logic_vector) return {{.Name}} is
    variable data: {{.Name}};
    constant w0: natural := 0;
{{- range .Fields}}
    constant {{.High}}: natural := {{.Low}} + {{.Width}};
{{- end}}
  begin
{{- range .Fields}}
    data.{{.Name}} := from_slvcodec(slv({{.High}}-1 downto {{.Low}}));
{{- end}}
    return data;
  end function;`))

var arrayTemplate = template.Must(template.New("array").Parse(
	`  function to_slvcodec (constant data: {{.Name}}) return std_logic_vector is
    constant w: natural := {{.ElemWidth}};
    variable slv: std_logic_vector(data'length*w-1 downto 0);
  begin
    for ii in 0 to data'length-1 loop
      slv((ii+1)*w-1 downto ii*w) := to_slvcodec(data(ii));
    end loop;
    return slv;
  end function;

  function from_slvcodec (constant slv: std_logic_vector) return {{.Name}} is
    constant w: natural := {{.ElemWidth}};
    variable data: {{.Name}}{{if .Constrained}}{{else}}(slv'length/w-1 downto 0){{end}};
  begin
    for ii in 0 to data'length-1 loop
      data(ii) := from_slvcodec(slv((ii+1)*w-1 downto ii*w));
    end loop;
    return data;
  end function;`))

var enumerationTemplate = template.Must(template.New("enumeration").Parse(
	`  function to_slvcodec (constant data: {{.Name}}) return std_logic_vector is
  begin
    return std_logic_vector(to_unsigned({{.Name}}'pos(data), {{.Name}}_slvcodecwidth));
  end function;

  function from_slvcodec (constant slv: std_logic_vector) return {{.Name}} is
  begin
    return {{.Name}}'val(to_integer(unsigned(slv)));
  end function;`))

type recordField struct {
	Name  string
	Width string
	Low   string
	High  string
}

// TypeDeclarations returns the package-level declarations for one type:
// its width constant and, where new conversion functions are generated,
// their declarations. Types that need nothing return "".
func TypeDeclarations(t typs.Type) (string, error) {
	switch v := t.(type) {
	case typs.Record:
		return widthConstant(v.Name(), v.Width()) + "\n" + functionDeclarations(v.Name()), nil
	case typs.Enumeration:
		return widthConstant(v.Name(), v.Width()) + "\n" + functionDeclarations(v.Name()), nil
	case typs.Vector:
		// Constraining std_logic_vector, unsigned or signed reuses the
		// functions of the base type.
		return widthConstant(v.Name(), v.Width()), nil
	case typs.ConstrainedArray:
		if namedArrayBase(v) {
			return widthConstant(v.Name(), v.Width()), nil
		}
		return widthConstant(v.Name(), v.Width()) + "\n" + functionDeclarations(v.Name()), nil
	case typs.Array:
		return functionDeclarations(v.Name()), nil
	default:
		return "", nil
	}
}

// TypeDefinitions returns the package-body function definitions for one
// type, or "" when no new functions are needed.
func TypeDefinitions(t typs.Type) (string, error) {
	var b strings.Builder
	switch v := t.(type) {
	case typs.Record:
		fields := make([]recordField, len(v.Fields()))
		for i, f := range v.Fields() {
			fields[i] = recordField{
				Name:  f.Name,
				Width: symmath.Render(f.Type.Width()),
				Low:   fmt.Sprintf("w%d", i),
				High:  fmt.Sprintf("w%d", i+1),
			}
		}
		data := struct {
			Name   string
			Fields []recordField
		}{v.Name(), fields}
		if err := recordTemplate.Execute(&b, data); err != nil {
			return "", err
		}
	case typs.Enumeration:
		if err := enumerationTemplate.Execute(&b, struct{ Name string }{v.Name()}); err != nil {
			return "", err
		}
	case typs.ConstrainedArray:
		if namedArrayBase(v) {
			return "", nil
		}
		data := struct {
			Name        string
			ElemWidth   string
			Constrained bool
		}{v.Name(), symmath.Render(v.Element().Width()), true}
		if err := arrayTemplate.Execute(&b, data); err != nil {
			return "", err
		}
	case typs.Array:
		data := struct {
			Name        string
			ElemWidth   string
			Constrained bool
		}{v.Name(), elemWidthReference(v.Element()), false}
		if err := arrayTemplate.Execute(&b, data); err != nil {
			return "", err
		}
	default:
		return "", nil
	}
	return b.String(), nil
}

// namedArrayBase reports whether a constrained array merely constrains a
// named array type, whose functions already exist.
func namedArrayBase(c typs.ConstrainedArray) bool {
	// A constrained array built from an inline "array ... of" declaration
	// has an anonymous base.
	return c.BaseName() != ""
}

// elemWidthReference renders the element width of an unconstrained array.
// Named element types refer to their generated width constants so the
// result stays valid even when the width depends on generics.
func elemWidthReference(elem typs.Type) string {
	if elem.Name() != "" {
		switch elem.(type) {
		case typs.Record, typs.Enumeration, typs.Vector, typs.ConstrainedArray:
			return elem.Name() + "_slvcodecwidth"
		}
	}
	return symmath.Render(elem.Width())
}

func widthConstant(name string, width symmath.Expr) string {
	return fmt.Sprintf(widthConstantTemplate, name, symmath.Render(width))
}

// PackageText generates the complete <name>_slvcodec package for a
// resolved package.
func PackageText(p *design.Package) (string, error) {
	typeNames := make([]string, 0, len(p.Types))
	for name := range p.Types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	var declarations, definitions []string
	for _, name := range typeNames {
		decl, err := TypeDeclarations(p.Types[name])
		if err != nil {
			return "", fmt.Errorf("declarations for %s: %w", name, err)
		}
		if decl != "" {
			declarations = append(declarations, decl)
		}
		def, err := TypeDefinitions(p.Types[name])
		if err != nil {
			return "", fmt.Errorf("definitions for %s: %w", name, err)
		}
		if def != "" {
			definitions = append(definitions, def)
		}
	}

	libraries := []string{"ieee"}
	var useLines []string
	for _, unit := range sortedUnits(p.Uses) {
		u := p.Uses[unit]
		if u.Library != "ieee" && u.Library != "std" {
			useLines = append(useLines, fmt.Sprintf("use %s.%s.%s;", u.Library, u.Unit, u.Within))
			useLines = append(useLines, fmt.Sprintf("use work.%s_slvcodec.all;", u.Unit))
		}
		seen := false
		for _, l := range libraries {
			if l == u.Library {
				seen = true
			}
		}
		if !seen {
			libraries = append(libraries, u.Library)
		}
	}
	useLines = append(useLines,
		"use ieee.std_logic_1164.all;",
		"use ieee.numeric_std.all;",
		fmt.Sprintf("use work.%s.all;", p.Name),
		"use work.slvcodec.all;",
	)
	var libraryLines []string
	for _, l := range libraries {
		libraryLines = append(libraryLines, fmt.Sprintf("library %s;", l))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\npackage %s_slvcodec is\n\n%s\n\nend package;\n",
		strings.Join(libraryLines, "\n"),
		strings.Join(useLines, "\n"),
		p.Name,
		strings.Join(declarations, "\n"))
	if len(definitions) > 0 {
		fmt.Fprintf(&b, "\npackage body %s_slvcodec is\n\n%s\n\nend package body;\n",
			p.Name,
			strings.Join(definitions, "\n"))
	}
	return b.String(), nil
}

func sortedUnits(uses map[string]design.Use) []string {
	units := make([]string, 0, len(uses))
	for unit := range uses {
		units = append(units, unit)
	}
	sort.Strings(units)
	return units
}
