package symmath

import (
	"errors"
	"sort"
	"testing"
)

func mustParseAndSimplify(t *testing.T, text string) Expr {
	t.Helper()
	e, err := ParseAndSimplify(text, DefaultRegistry())
	if err != nil {
		t.Fatalf("ParseAndSimplify(%q) failed: %v", text, err)
	}
	return e
}

func TestSimplifications(t *testing.T) {
	tests := []struct {
		in   string
		want []string // any of these renderings is acceptable
	}{
		{"fish + 8*bear + 2 * (fish - bear)", []string{"(3*fish+6*bear)", "(6*bear+3*fish)"}},
		{"4 + (4 - 4) * 2 - 3", []string{"1"}},
		{"7 * 7", []string{"49"}},
		{"2 * (3 + 5)", []string{"16"}},
		{"logceil(5+3)-2", []string{"1"}},
		{"1 + 1", []string{"2"}},
		{"(logceil(5*4)-1)+1-0", []string{"5"}},
		{"3 * 2 / fish / (3 / 4)", []string{"8/fish", "8*1/fish"}},
		{"fish + 1 - 1", []string{"fish"}},
		{"(fish + 1) - 1", []string{"fish"}},
		{"fish + 2 * fish", []string{"3*fish"}},
		{"minimum(5+6, 20-2)", []string{"11"}},
		{"maximum(logceil(16), 3)", []string{"4"}},
	}
	for _, tt := range tests {
		got := Render(mustParseAndSimplify(t, tt.in))
		ok := false
		for _, w := range tt.want {
			if got == w {
				ok = true
			}
		}
		if !ok {
			t.Fatalf("simplify(%q) rendered %q, want one of %v", tt.in, got, tt.want)
		}
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	reg := DefaultRegistry()
	for _, text := range []string{
		"fish + 8*bear + 2 * (fish - bear)",
		"3 * 2 / fish / (3 / 4)",
		"logceil(N) + M*M - 2",
	} {
		once := mustParseAndSimplify(t, text)
		twice := Simplify(once, reg)
		if !Equal(once, twice) {
			t.Fatalf("simplify(%q) is not idempotent: %s then %s", text, Render(once), Render(twice))
		}
	}
}

func TestRenderRoundTrip(t *testing.T) {
	reg := DefaultRegistry()
	for _, text := range []string{
		"2 + 3*4 - 6/2",
		"logceil(5+3)-2",
		"maximum(3, minimum(10, 7)) * 2",
		"(1+2)*(3+4)",
	} {
		e := mustParseAndSimplify(t, text)
		want, err := Eval(e, reg)
		if err != nil {
			t.Fatalf("Eval(%q): %v", text, err)
		}
		back, err := ParseAndSimplify(Render(e), reg)
		if err != nil {
			t.Fatalf("reparsing render of %q: %v", text, err)
		}
		got, err := Eval(back, reg)
		if err != nil {
			t.Fatalf("Eval of reparsed %q: %v", text, err)
		}
		if got != want {
			t.Fatalf("round trip of %q changed value: got %d, want %d", text, got, want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	e := mustParseAndSimplify(t, "fish + 3 * bear * shark / house")
	substituted := Substitute(e, map[string]Expr{
		"fish":  Literal{Value: 2},
		"bear":  Literal{Value: 4},
		"shark": Literal{Value: 3},
		"house": Literal{Value: 2},
	})
	got, err := Eval(Simplify(substituted, DefaultRegistry()), DefaultRegistry())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if want := 2 + 3*4*3/2; got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestSubstitutePartial(t *testing.T) {
	e := mustParseAndSimplify(t, "N * 2 + M")
	substituted := Simplify(Substitute(e, map[string]Expr{"N": Literal{Value: 3}}), DefaultRegistry())
	names := SortedFreeVariables(substituted)
	if len(names) != 1 || names[0] != "M" {
		t.Fatalf("free variables after partial substitution: %v", names)
	}
	if _, err := Eval(substituted, DefaultRegistry()); err == nil {
		t.Fatal("expected unresolved error for remaining free variable")
	}
}

func TestFreeVariables(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"3 * (fish + 6) - 2 * bear - fish", []string{"bear", "fish"}},
		{"3 * 12", nil},
		{`"001" + fish`, []string{"fish"}},
		{"logceil(DEPTH) - 1", []string{"DEPTH"}},
	}
	for _, tt := range tests {
		got := SortedFreeVariables(mustParseAndSimplify(t, tt.in))
		want := append([]string(nil), tt.want...)
		sort.Strings(want)
		if len(got) != len(want) {
			t.Fatalf("FreeVariables(%q) = %v, want %v", tt.in, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("FreeVariables(%q) = %v, want %v", tt.in, got, want)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		"2 ** 3",
		"",
		"3.5 + 1",
		"(1 + 2",
		"1 + 2)",
		"1 +",
	} {
		if _, err := Parse(text); err == nil {
			t.Fatalf("Parse(%q) should have failed", text)
		}
	}
}

func TestIntegralDecimalLiteral(t *testing.T) {
	got, err := Eval(mustParseAndSimplify(t, "3.0 + 1"), DefaultRegistry())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestEvalUnresolved(t *testing.T) {
	e := mustParseAndSimplify(t, "fish + 1")
	_, err := Eval(e, DefaultRegistry())
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedError, got %v", err)
	}
}

func TestEvalUnknownFunction(t *testing.T) {
	e, err := Parse("mystery(4)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Eval(e, DefaultRegistry()); err == nil {
		t.Fatal("expected error for unregistered function")
	}
}

func TestRegistryIsolation(t *testing.T) {
	reg := DefaultRegistry()
	if err := reg.Register("double", func(args []int) (int, error) {
		return args[0] * 2, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	e, err := ParseAndSimplify("double(21)", reg)
	if err != nil {
		t.Fatalf("ParseAndSimplify: %v", err)
	}
	if got, _ := Eval(e, reg); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	// The custom function is not visible through a fresh registry.
	e2, _ := Parse("double(21)")
	if _, err := Eval(e2, DefaultRegistry()); err == nil {
		t.Fatal("custom function leaked into a fresh registry")
	}
	if err := reg.Register("double", nil); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestLogceil(t *testing.T) {
	tests := []struct{ in, want, want0 int }{
		{0, 1, 0},
		{1, 1, 0},
		{2, 1, 1},
		{4, 2, 2},
		{7, 3, 3},
		{8, 3, 3},
		{9, 4, 4},
	}
	for _, tt := range tests {
		if got := Logceil(tt.in); got != tt.want {
			t.Fatalf("Logceil(%d) = %d, want %d", tt.in, got, tt.want)
		}
		if got := LogceilFrom0(tt.in); got != tt.want0 {
			t.Fatalf("LogceilFrom0(%d) = %d, want %d", tt.in, got, tt.want0)
		}
	}
}
