// Package decl defines the flat declaration rows that describe the
// packages and entities of a design. The rows arrive as JSON produced by
// an external extractor and are the input to type resolution.
package decl

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tables groups the declaration rows of one design.
type Tables struct {
	Packages []PackageRow `json:"packages,omitempty"`
	Entities []EntityRow  `json:"entities,omitempty"`
}

// PackageRow is a package declaration with its uses, constants and types
// in declaration order.
type PackageRow struct {
	Name      string        `json:"name"`
	Uses      []UseRow      `json:"uses,omitempty"`
	Constants []ConstantRow `json:"constants,omitempty"`
	Types     []TypeRow     `json:"types,omitempty"`
}

// EntityRow is an entity declaration.
type EntityRow struct {
	Name     string       `json:"name"`
	Uses     []UseRow     `json:"uses,omitempty"`
	Generics []GenericRow `json:"generics,omitempty"`
	Ports    []PortRow    `json:"ports,omitempty"`
}

// UseRow is a use clause such as "use lib.pkg.all". Within is the selected
// suffix; only "all" imports the unit's declarations.
type UseRow struct {
	Library string `json:"library"`
	Unit    string `json:"unit"`
	Within  string `json:"within"`
}

// ConstantRow is a constant declaration. The expression is unparsed text.
type ConstantRow struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Type kinds.
const (
	KindSubtype     = "subtype"
	KindArray       = "array"
	KindRecord      = "record"
	KindEnumeration = "enumeration"
)

// TypeRow is a type or subtype declaration. Which fields are meaningful
// depends on Kind:
//
//   - subtype: Subtype holds the base type mark with its constraint
//   - array: Subtype holds the element type mark, Constraint the bounds
//   - record: Fields holds the elements
//   - enumeration: Literals holds the literal names
type TypeRow struct {
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Subtype    string     `json:"subtype,omitempty"`
	Constraint string     `json:"constraint,omitempty"`
	Fields     []FieldRow `json:"fields,omitempty"`
	Literals   []string   `json:"literals,omitempty"`
}

// FieldRow is one element of a record type.
type FieldRow struct {
	Name    string `json:"name"`
	Subtype string `json:"subtype"`
}

// GenericRow is a generic parameter of an entity.
type GenericRow struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
}

// PortRow is a port of an entity.
type PortRow struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Subtype   string `json:"subtype"`
}

// Load reads declaration tables from a JSON file.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading declarations: %w", err)
	}
	var tables Tables
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("parsing declarations from %s: %w", path, err)
	}
	return &tables, nil
}
