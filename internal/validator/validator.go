// Package validator checks declaration tables against an embedded CUE
// schema before they reach type resolution. A malformed extraction fails
// here with a schema error instead of a confusing resolution failure
// further in.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Validator validates declaration tables against the CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Validator from the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}
	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks that the data conforms to the #Tables definition.
func (v *Validator) Validate(data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the schema.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}
	tablesDef := v.schema.LookupPath(cue.ParsePath("#Tables"))
	if tablesDef.Err() != nil {
		return fmt.Errorf("looking up #Tables definition: %w", tablesDef.Err())
	}
	unified := tablesDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidationErrors returns every validation error individually, for error
// reports that should show more than the first failure.
func (v *Validator) ValidationErrors(data any) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}
	tablesDef := v.schema.LookupPath(cue.ParsePath("#Tables"))
	if tablesDef.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", tablesDef.Err())}
	}
	unified := tablesDef.Unify(dataValue)
	err = unified.Validate()
	if err == nil {
		return nil
	}
	var errs []string
	for _, e := range cueerrors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}
