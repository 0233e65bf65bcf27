package bom

import (
	"errors"
	"fmt"
	"strings"
)

// Structural error codes (E120-E129)
const (
	// ErrCodeMissingColumns indicates a required column is not resolvable.
	ErrCodeMissingColumns = "E120"

	// ErrCodeBadAnchorLevel indicates the start row's depth marker is unparsable.
	ErrCodeBadAnchorLevel = "E121"

	// ErrCodeStartOutOfRange indicates the start index is outside the grid.
	ErrCodeStartOutOfRange = "E122"

	// ErrCodePartNotFound indicates a scoped extraction anchor part is absent.
	ErrCodePartNotFound = "E123"
)

// StructuralError represents a failure that aborts a whole build scope.
//
// Structural problems (missing required columns, an unparsable depth marker
// on the anchor row) are never tolerated partially: Build returns before
// processing any row, and the caller receives full row/column context.
type StructuralError struct {
	// Code identifies the error category (E120-E129).
	Code string

	// Message is a human-readable description.
	Message string

	// Row is the offending grid row index, or -1 when not row-specific.
	Row int

	// Columns lists the unresolvable columns (for E120).
	Columns []Column
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	switch {
	case len(e.Columns) > 0:
		names := make([]string, len(e.Columns))
		for i, c := range e.Columns {
			names[i] = string(c)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, strings.Join(names, ", "))
	case e.Row >= 0:
		return fmt.Sprintf("[%s] row %d: %s", e.Code, e.Row, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

func newMissingColumns(missing []Column) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeMissingColumns,
		Message: "required columns not resolvable",
		Row:     -1,
		Columns: missing,
	}
}
