// Package compiler turns CUE lifecycle-policy files into lifecycle.Policy
// values and validates them against schema rules.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/bomgrid/internal/lifecycle"
)

// CompileError represents a parse failure in a policy file.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompilePolicy parses a CUE value into a lifecycle policy.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the lifecycle struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`lifecycle: { states: [...] }`)
//	policy, err := CompilePolicy(v.LookupPath(cue.ParsePath("lifecycle")))
func CompilePolicy(v cue.Value) (*lifecycle.Policy, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "lifecycle", Message: err.Error(), Pos: v.Pos()}
	}

	policy := &lifecycle.Policy{}

	statesVal := v.LookupPath(cue.ParsePath("states"))
	if !statesVal.Exists() {
		return nil, &CompileError{
			Field:   "states",
			Message: "states is required",
			Pos:     v.Pos(),
		}
	}
	states, err := parseStringList(statesVal, "states")
	if err != nil {
		return nil, err
	}
	policy.States = states

	transVal := v.LookupPath(cue.ParsePath("transitions"))
	if transVal.Exists() {
		policy.Transitions, err = parseTransitions(transVal)
		if err != nil {
			return nil, err
		}
	} else {
		policy.Transitions = map[string][]string{}
	}

	terminalVal := v.LookupPath(cue.ParsePath("terminal"))
	if terminalVal.Exists() {
		policy.Terminal, err = parseStringList(terminalVal, "terminal")
		if err != nil {
			return nil, err
		}
	}

	nonProdVal := v.LookupPath(cue.ParsePath("non_production"))
	if nonProdVal.Exists() {
		policy.NonProduction, err = parseStringList(nonProdVal, "non_production")
		if err != nil {
			return nil, err
		}
	}

	return policy, nil
}

func parseStringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: fmt.Sprintf("expected a list: %v", err), Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("expected a string element: %v", err),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func parseTransitions(v cue.Value) (map[string][]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: "transitions", Message: fmt.Sprintf("expected a struct: %v", err), Pos: v.Pos()}
	}
	out := make(map[string][]string)
	for iter.Next() {
		from := iter.Label()
		targets, err := parseStringList(iter.Value(), "transitions."+from)
		if err != nil {
			return nil, err
		}
		out[from] = targets
	}
	return out, nil
}
