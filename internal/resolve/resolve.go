// Package resolve implements the pass-based fixed-point resolution used for
// packages, constants and types: named items carrying dependency-name sets
// are resolved as soon as everything they depend on is available.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Error reports a resolution failure: a missing dependency, an
// unconstrained type where a concrete one is required, or a fixed-point
// stall (the only way a dependency cycle surfaces).
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

// Errorf builds a resolution Error.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Func resolves a single named item against the items resolved so far.
type Func[U, R any] func(name string, item U, available map[string]R) (R, error)

// All resolves every item in unresolved against the growing available set.
//
// Each pass resolves the items whose dependency set is covered by the
// available names. An item whose dependencies intersect the failed set
// fails in cascade; an item whose resolve function returns an error fails
// with that error recorded as the reason, without aborting the run. A pass
// that makes no progress at all means the remaining items form a cycle or
// reference names that do not exist, and is reported as a fatal Error
// naming every stuck item and its missing dependencies.
//
// The returned failed map carries the per-name failure reasons; deciding
// whether a non-empty failed map is fatal is the caller's policy.
func All[U, R any](
	available map[string]R,
	unresolved map[string]U,
	deps map[string]*set.Set[string],
	fn Func[U, R],
) (resolved map[string]R, failed map[string]error, err error) {
	resolved = make(map[string]R)
	failed = make(map[string]error)

	known := set.New[string](len(available))
	working := make(map[string]R, len(available))
	for name, item := range available {
		known.Insert(name)
		working[name] = item
	}
	failedNames := set.New[string](0)

	remaining := sortedKeys(unresolved)
	for len(remaining) > 0 {
		progress := false
		var still []string
		for _, name := range remaining {
			itemDeps := deps[name]
			if itemDeps == nil {
				itemDeps = set.New[string](0)
			}
			if cascade := filterSet(itemDeps, failedNames.Contains); len(cascade) > 0 {
				failed[name] = Errorf("%s depends on failed %s", name, strings.Join(cascade, ", "))
				failedNames.Insert(name)
				progress = true
				continue
			}
			if !itemDeps.Difference(known).Empty() {
				still = append(still, name)
				continue
			}
			item, resolveErr := fn(name, unresolved[name], working)
			if resolveErr != nil {
				failed[name] = resolveErr
				failedNames.Insert(name)
			} else {
				resolved[name] = item
				working[name] = item
				known.Insert(name)
			}
			progress = true
		}
		if !progress {
			var parts []string
			for _, name := range still {
				itemDeps := deps[name]
				missing := filterSet(itemDeps, func(dep string) bool { return !known.Contains(dep) })
				parts = append(parts, fmt.Sprintf("%s (missing %s)", name, strings.Join(missing, ", ")))
			}
			return resolved, failed, Errorf("resolution stalled: %s", strings.Join(parts, "; "))
		}
		remaining = still
	}
	return resolved, failed, nil
}

// FailedError aggregates a non-empty failed map into a single error, for
// callers running in must-resolve mode.
func FailedError(failed map[string]error) error {
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	var parts []string
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, failed[name]))
	}
	return Errorf("failed to resolve %s", strings.Join(parts, "; "))
}

func filterSet(s *set.Set[string], keep func(string) bool) []string {
	var out []string
	for _, name := range s.Slice() {
		if keep(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
