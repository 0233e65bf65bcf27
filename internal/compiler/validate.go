package compiler

import (
	"fmt"

	"github.com/roach88/bomgrid/internal/lifecycle"
)

// Policy validation error codes (E140-E149)
const (
	ErrEmptyStates      = "E140" // at least one state required
	ErrDuplicateState   = "E141" // duplicate state declaration
	ErrUnknownState     = "E142" // transition/terminal/non_production references undeclared state
	ErrTerminalOutgoing = "E143" // terminal state has outgoing transitions
	ErrNoTerminal       = "E144" // at least one terminal state required
)

// ValidationError represents a policy schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled policy against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(p *lifecycle.Policy) []ValidationError {
	var errs []ValidationError

	if len(p.States) == 0 {
		errs = append(errs, ValidationError{
			Field:   "states",
			Message: "at least one state is required",
			Code:    ErrEmptyStates,
		})
		return errs
	}

	declared := make(map[string]bool, len(p.States))
	for i, s := range p.States {
		if declared[s] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("states[%d]", i),
				Message: fmt.Sprintf("duplicate state: %q", s),
				Code:    ErrDuplicateState,
			})
		}
		declared[s] = true
	}

	for from, targets := range p.Transitions {
		if !declared[from] {
			errs = append(errs, ValidationError{
				Field:   "transitions." + from,
				Message: fmt.Sprintf("undeclared state: %q", from),
				Code:    ErrUnknownState,
			})
		}
		for i, to := range targets {
			if !declared[to] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("transitions.%s[%d]", from, i),
					Message: fmt.Sprintf("undeclared state: %q", to),
					Code:    ErrUnknownState,
				})
			}
		}
	}

	if len(p.Terminal) == 0 {
		errs = append(errs, ValidationError{
			Field:   "terminal",
			Message: "at least one terminal state is required",
			Code:    ErrNoTerminal,
		})
	}
	for i, s := range p.Terminal {
		if !declared[s] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("terminal[%d]", i),
				Message: fmt.Sprintf("undeclared state: %q", s),
				Code:    ErrUnknownState,
			})
			continue
		}
		if len(p.Transitions[s]) > 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("terminal[%d]", i),
				Message: fmt.Sprintf("terminal state %q has outgoing transitions", s),
				Code:    ErrTerminalOutgoing,
			})
		}
	}

	for i, s := range p.NonProduction {
		if !declared[s] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("non_production[%d]", i),
				Message: fmt.Sprintf("undeclared state: %q", s),
				Code:    ErrUnknownState,
			})
		}
	}

	return errs
}
