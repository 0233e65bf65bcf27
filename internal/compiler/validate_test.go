package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgrid/internal/lifecycle"
)

func codesOf(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_DefaultPolicyIsClean(t *testing.T) {
	errs := Validate(lifecycle.DefaultPolicy())
	assert.Empty(t, errs)
}

func TestValidate_EmptyStates(t *testing.T) {
	errs := Validate(&lifecycle.Policy{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEmptyStates, errs[0].Code)
	assert.Equal(t, "states", errs[0].Field)
}

func TestValidate_DuplicateState(t *testing.T) {
	errs := Validate(&lifecycle.Policy{
		States:   []string{"DRAFT", "ACTIVE", "DRAFT"},
		Terminal: []string{"ACTIVE"},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateState, errs[0].Code)
	assert.Equal(t, "states[2]", errs[0].Field)
	assert.Contains(t, errs[0].Message, `"DRAFT"`)
}

func TestValidate_UnknownStates(t *testing.T) {
	errs := Validate(&lifecycle.Policy{
		States: []string{"DRAFT", "ACTIVE"},
		Transitions: map[string][]string{
			"DRAFT": {"ACTIVE", "GHOST"},
			"LIMBO": {"ACTIVE"},
		},
		Terminal:      []string{"ACTIVE", "VOID"},
		NonProduction: []string{"DRAFT", "PHANTOM"},
	})

	assert.Len(t, errs, 4)
	for _, e := range errs {
		assert.Equal(t, ErrUnknownState, e.Code)
	}

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Contains(t, fields, "transitions.DRAFT[1]")
	assert.Contains(t, fields, "transitions.LIMBO")
	assert.Contains(t, fields, "terminal[1]")
	assert.Contains(t, fields, "non_production[1]")
}

func TestValidate_TerminalWithOutgoingTransitions(t *testing.T) {
	errs := Validate(&lifecycle.Policy{
		States: []string{"ACTIVE", "OBSOLETE"},
		Transitions: map[string][]string{
			"ACTIVE":   {"OBSOLETE"},
			"OBSOLETE": {"ACTIVE"},
		},
		Terminal: []string{"OBSOLETE"},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrTerminalOutgoing, errs[0].Code)
	assert.Contains(t, errs[0].Message, `"OBSOLETE"`)
}

func TestValidate_NoTerminalState(t *testing.T) {
	errs := Validate(&lifecycle.Policy{
		States: []string{"DRAFT", "ACTIVE"},
		Transitions: map[string][]string{
			"DRAFT": {"ACTIVE"},
		},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoTerminal, errs[0].Code)
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	errs := Validate(&lifecycle.Policy{
		States: []string{"A", "A"},
		Transitions: map[string][]string{
			"B": {"C"},
		},
	})

	codes := codesOf(errs)
	assert.Contains(t, codes, ErrDuplicateState)
	assert.Contains(t, codes, ErrUnknownState)
	assert.Contains(t, codes, ErrNoTerminal)
	assert.GreaterOrEqual(t, len(errs), 4)
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "terminal", Message: "at least one terminal state is required", Code: ErrNoTerminal}
	assert.Equal(t, "[E144] terminal: at least one terminal state is required", err.Error())
}
