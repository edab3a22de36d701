package typparse

import (
	"testing"

	"github.com/benreynwar/slvcodec/internal/decl"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
)

func TestConstraintSize(t *testing.T) {
	reg := symmath.DefaultRegistry()
	tests := []struct {
		constraint string
		want       string
	}{
		{"(7 downto 0)", "8"},
		{"(3+6 to 7)", "-1"},
		{"(26 downto 10*2 )", "7"},
		{" (FISH*2-1 downto FISH )", "FISH"},
		{"(FISH*5-1 downto 0)", "5*FISH"},
		{"(logceil(DEPTH)-1 downto 0)", "logceil(DEPTH)"},
	}
	for _, tt := range tests {
		size, err := ConstraintSize(tt.constraint, reg)
		if err != nil {
			t.Errorf("ConstraintSize(%q): %v", tt.constraint, err)
			continue
		}
		if got := symmath.Render(size); got != tt.want {
			t.Errorf("ConstraintSize(%q) = %s, want %s", tt.constraint, got, tt.want)
		}
	}
}

func TestConstraintBoundsErrors(t *testing.T) {
	for _, text := range []string{"", "(7 downto)", "7 downto 0", "(7 upto 0)"} {
		if _, _, err := ConstraintBounds(text); err == nil {
			t.Errorf("ConstraintBounds(%q): expected error", text)
		}
	}
}

func TestSplitMark(t *testing.T) {
	mark, constraint := SplitMark(" unsigned(7 downto 0)")
	if mark != "unsigned" || constraint != "(7 downto 0)" {
		t.Fatalf("got %q, %q", mark, constraint)
	}
	mark, constraint = SplitMark("std_logic")
	if mark != "std_logic" || constraint != "" {
		t.Fatalf("got %q, %q", mark, constraint)
	}
}

func TestBuildTypeRecord(t *testing.T) {
	reg := symmath.DefaultRegistry()
	row := decl.TypeRow{
		Name: "complex_t",
		Kind: decl.KindRecord,
		Fields: []decl.FieldRow{
			{Name: "real", Subtype: "signed(7 downto 0)"},
			{Name: "imag", Subtype: "signed(7 downto 0)"},
		},
	}
	u, err := BuildType(row, reg)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := u.(typs.UnresolvedRecord)
	if !ok {
		t.Fatalf("built %T, want UnresolvedRecord", u)
	}
	deps := rec.TypeDependencies()
	if len(deps) != 2 || deps[0] != "signed" || deps[1] != "signed" {
		t.Fatalf("TypeDependencies = %v", deps)
	}
}

func TestBuildTypeArray(t *testing.T) {
	reg := symmath.DefaultRegistry()
	u, err := BuildType(decl.TypeRow{
		Name:       "sample_array_t",
		Kind:       decl.KindArray,
		Subtype:    "sample_t",
		Constraint: "(N_SAMPLES-1 downto 0)",
	}, reg)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := u.(typs.UnresolvedConstrainedArray)
	if !ok {
		t.Fatalf("built %T, want UnresolvedConstrainedArray", u)
	}
	if got := arr.TypeDependencies(); len(got) != 1 || got[0] != "sample_t" {
		t.Fatalf("TypeDependencies = %v", got)
	}
	if got := symmath.Render(arr.Size); got != "N_SAMPLES" {
		t.Fatalf("size = %s, want N_SAMPLES", got)
	}
}

func TestBuildTypeUnconstrainedArray(t *testing.T) {
	reg := symmath.DefaultRegistry()
	u, err := BuildType(decl.TypeRow{
		Name:    "sample_array_t",
		Kind:    decl.KindArray,
		Subtype: "sample_t",
	}, reg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := u.(typs.UnresolvedArray); !ok {
		t.Fatalf("built %T, want UnresolvedArray", u)
	}
}

func TestBuildTypeSubtype(t *testing.T) {
	reg := symmath.DefaultRegistry()
	u, err := BuildType(decl.TypeRow{
		Name:    "address_t",
		Kind:    decl.KindSubtype,
		Subtype: "unsigned(logceil(DEPTH)-1 downto 0)",
	}, reg)
	if err != nil {
		t.Fatal(err)
	}
	sub, ok := u.(typs.UnresolvedConstrainedArray)
	if !ok {
		t.Fatalf("built %T, want UnresolvedConstrainedArray", u)
	}
	if sub.BaseIdent != "unsigned" {
		t.Fatalf("base = %q, want unsigned", sub.BaseIdent)
	}
	if _, err := BuildType(decl.TypeRow{Name: "alias_t", Kind: decl.KindSubtype, Subtype: "other_t"}, reg); err == nil {
		t.Fatal("expected error for unconstrained subtype")
	}
}

func TestBuildTypeEnumeration(t *testing.T) {
	reg := symmath.DefaultRegistry()
	u, err := BuildType(decl.TypeRow{
		Name:     "state_t",
		Kind:     decl.KindEnumeration,
		Literals: []string{"idle", "busy"},
	}, reg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := u.(typs.Enumeration); !ok {
		t.Fatalf("built %T, want Enumeration", u)
	}
}
