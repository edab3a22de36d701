package resolve

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-set/v3"
)

// sum resolves an item by adding the values of its dependencies.
func sum(depNames map[string][]string) Func[int, int] {
	return func(name string, item int, available map[string]int) (int, error) {
		total := item
		for _, dep := range depNames[name] {
			total += available[dep]
		}
		return total, nil
	}
}

func depSets(depNames map[string][]string) map[string]*set.Set[string] {
	out := make(map[string]*set.Set[string])
	for name, names := range depNames {
		out[name] = set.From(names)
	}
	return out
}

func TestAllResolvesInDependencyOrder(t *testing.T) {
	depNames := map[string][]string{
		"a": nil,
		"b": {"a"},
		"c": {"a", "b"},
	}
	resolved, failed, err := All(
		map[string]int{},
		map[string]int{"a": 1, "b": 10, "c": 100},
		depSets(depNames),
		sum(depNames),
	)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
	if resolved["a"] != 1 || resolved["b"] != 11 || resolved["c"] != 112 {
		t.Fatalf("wrong values: %v", resolved)
	}
}

func TestAllUsesAvailable(t *testing.T) {
	depNames := map[string][]string{"b": {"a"}}
	resolved, _, err := All(
		map[string]int{"a": 5},
		map[string]int{"b": 1},
		depSets(depNames),
		sum(depNames),
	)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if resolved["b"] != 6 {
		t.Fatalf("b = %d, want 6", resolved["b"])
	}
}

func TestCycleTerminatesWithError(t *testing.T) {
	depNames := map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"c": {"a"}, // downstream of the cycle, reported the same way
	}
	_, _, err := All(
		map[string]int{},
		map[string]int{"a": 0, "b": 0, "c": 0},
		depSets(depNames),
		sum(depNames),
	)
	if err == nil {
		t.Fatal("expected a stall error for the cycle")
	}
	msg := err.Error()
	for _, name := range []string{"a", "b", "c"} {
		if !strings.Contains(msg, name) {
			t.Fatalf("stall error %q does not name %s", msg, name)
		}
	}
}

func TestResolveErrorCascades(t *testing.T) {
	depNames := map[string][]string{
		"bad":        nil,
		"needs_bad":  {"bad"},
		"fine":       nil,
		"needs_fine": {"fine"},
	}
	resolved, failed, err := All(
		map[string]int{},
		map[string]int{"bad": 0, "needs_bad": 0, "fine": 2, "needs_fine": 3},
		depSets(depNames),
		func(name string, item int, available map[string]int) (int, error) {
			if name == "bad" {
				return 0, fmt.Errorf("boom")
			}
			return sum(depNames)(name, item, available)
		},
	)
	if err != nil {
		t.Fatalf("a single item's failure must not abort the run: %v", err)
	}
	if _, ok := failed["bad"]; !ok {
		t.Fatal("bad should have failed")
	}
	if reason, ok := failed["needs_bad"]; !ok || !strings.Contains(reason.Error(), "bad") {
		t.Fatalf("needs_bad should have failed in cascade, got %v", reason)
	}
	if resolved["fine"] != 2 || resolved["needs_fine"] != 5 {
		t.Fatalf("independent items should still resolve: %v", resolved)
	}
	if aggErr := FailedError(failed); aggErr == nil || !strings.Contains(aggErr.Error(), "needs_bad") {
		t.Fatalf("aggregate error should name the failures, got %v", aggErr)
	}
}

func TestFailedErrorNilForEmpty(t *testing.T) {
	if err := FailedError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
