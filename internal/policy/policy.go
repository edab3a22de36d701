// Package policy evaluates OPA rules against the facts of a resolved
// design: testbench conventions like clock ports, directions the codec can
// drive, and hygiene checks like unused packages. The default rules are
// embedded; extra .rego files can extend them.
package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/benreynwar/slvcodec/internal/design"
	"github.com/benreynwar/slvcodec/internal/symmath"
)

//go:embed rules.rego
var defaultRules string

// Engine evaluates policies against design facts.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Violation is one policy finding.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Entity   string `json:"entity"`
	Message  string `json:"message"`
}

// Summary aggregates finding counts.
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Result contains the evaluation results.
type Result struct {
	Violations []Violation
	Summary    Summary
}

// Input is the fact document passed to the rules.
type Input struct {
	Packages []PackageFact `json:"packages"`
	Entities []EntityFact  `json:"entities"`
}

// PackageFact describes one resolved package.
type PackageFact struct {
	Name  string     `json:"name"`
	Uses  []string   `json:"uses"`
	Types []TypeFact `json:"types"`
}

// TypeFact describes one resolved type.
type TypeFact struct {
	Name  string `json:"name"`
	Width string `json:"width"`
}

// EntityFact describes one resolved entity.
type EntityFact struct {
	Name  string     `json:"name"`
	Uses  []string   `json:"uses"`
	Ports []PortFact `json:"ports"`
}

// PortFact describes one resolved port.
type PortFact struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Width     string `json:"width"`
}

// New creates an engine from the embedded rules plus any .rego files in
// extraDir. extraDir may be empty.
func New(extraDir string) (*Engine, error) {
	modules := []func(*rego.Rego){rego.Module("rules.rego", defaultRules)}
	if extraDir != "" {
		files, err := filepath.Glob(filepath.Join(extraDir, "*.rego"))
		if err != nil {
			return nil, fmt.Errorf("finding policy files: %w", err)
		}
		for _, f := range files {
			content, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f, err)
			}
			modules = append(modules, rego.Module(f, string(content)))
		}
	}

	engine := &Engine{queries: make(map[string]rego.PreparedEvalQuery)}
	for name, query := range map[string]string{
		"violations": "data.slvcodec.checks.all_violations",
		"summary":    "data.slvcodec.checks.summary",
	} {
		opts := append([]func(*rego.Rego){rego.Query(query)}, modules...)
		prepared, err := rego.New(opts...).PrepareForEval(context.Background())
		if err != nil {
			return nil, fmt.Errorf("preparing %s query: %w", name, err)
		}
		engine.queries[name] = prepared
	}
	return engine, nil
}

// Evaluate runs the rules against the input facts.
func (e *Engine) Evaluate(input Input) (*Result, error) {
	ctx := context.Background()
	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{}
	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if violations, ok := rs[0].Expressions[0].Value.([]any); ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]any)
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					Entity:   getString(vmap, "entity"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}
	sort.Slice(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		return a.Rule < b.Rule
	})

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if smap, ok := rs[0].Expressions[0].Value.(map[string]any); ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}
	return result, nil
}

// BuildInput extracts the policy facts from a resolved design.
func BuildInput(d *design.Design) Input {
	var input Input
	for _, name := range sortedKeys(d.Packages) {
		p := d.Packages[name]
		if isBuiltinPackage(name) {
			continue
		}
		fact := PackageFact{Name: name, Uses: useNames(p.Uses)}
		for _, tn := range sortedKeys(p.Types) {
			t := p.Types[tn]
			width := ""
			if t.Width() != nil {
				width = symmath.Render(t.Width())
			}
			fact.Types = append(fact.Types, TypeFact{Name: tn, Width: width})
		}
		input.Packages = append(input.Packages, fact)
	}
	for _, name := range sortedKeys(d.Entities) {
		e := d.Entities[name]
		fact := EntityFact{Name: name, Uses: useNames(e.Uses)}
		for _, p := range e.Ports {
			width := ""
			if p.Type.Width() != nil {
				width = symmath.Render(p.Type.Width())
			}
			fact.Ports = append(fact.Ports, PortFact{
				Name:      p.Name,
				Direction: p.Direction,
				Type:      p.Type.Name(),
				Width:     width,
			})
		}
		input.Entities = append(input.Entities, fact)
	}
	return input
}

func isBuiltinPackage(name string) bool {
	for _, std := range design.StandardPackages {
		if name == std {
			return true
		}
	}
	return false
}

func useNames(uses map[string]design.Use) []string {
	names := make([]string, 0, len(uses))
	for name := range uses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func structToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]any, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
