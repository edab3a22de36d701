package validator

import (
	"strings"
	"testing"

	"github.com/benreynwar/slvcodec/internal/decl"
)

func validTables() *decl.Tables {
	return &decl.Tables{
		Packages: []decl.PackageRow{{
			Name: "sample_pkg",
			Uses: []decl.UseRow{
				{Library: "ieee", Unit: "std_logic_1164", Within: "all"},
			},
			Constants: []decl.ConstantRow{
				{Name: "data_width", Expression: "8"},
			},
			Types: []decl.TypeRow{
				{
					Name: "complex_t",
					Kind: decl.KindRecord,
					Fields: []decl.FieldRow{
						{Name: "real", Subtype: "signed(7 downto 0)"},
					},
				},
			},
		}},
		Entities: []decl.EntityRow{{
			Name: "sample_buffer",
			Ports: []decl.PortRow{
				{Name: "clk", Direction: "in", Subtype: "std_logic"},
			},
		}},
	}
}

func TestValidTablesPass(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.Validate(validTables()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBadKindFails(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tables := validTables()
	tables.Packages[0].Types[0].Kind = "union"
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected error for unknown type kind")
	}
}

func TestBadDirectionFails(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tables := validTables()
	tables.Entities[0].Ports[0].Direction = "sideways"
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected error for bad port direction")
	}
}

func TestSelectiveUseFails(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tables := validTables()
	tables.Packages[0].Uses[0].Within = "std_logic"
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected error for a use clause that does not select all")
	}
}

func TestBadIdentifierFails(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tables := validTables()
	tables.Packages[0].Name = "2pac"
	errs := v.ValidationErrors(tables)
	if len(errs) == 0 {
		t.Fatal("expected validation errors for bad identifier")
	}
	joined := strings.Join(errs, "\n")
	if !strings.Contains(joined, "name") {
		t.Errorf("errors do not mention the name field: %s", joined)
	}
}

func TestValidateJSON(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.ValidateJSON([]byte(`{"packages": [{"name": "p"}]}`)); err != nil {
		t.Fatalf("ValidateJSON: %v", err)
	}
	if err := v.ValidateJSON([]byte(`{"packages": [{"name": 3}]}`)); err == nil {
		t.Fatal("expected error for non-string name")
	}
}
