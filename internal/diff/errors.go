package diff

import (
	"errors"
	"fmt"
)

// DiffError is raised only when one of the two input trees could not be
// built. It wraps the underlying structural error with the side ("old" or
// "new") that failed, so the caller knows which snapshot to fix.
type DiffError struct {
	Side string
	Err  error
}

// Error implements the error interface.
func (e *DiffError) Error() string {
	return fmt.Sprintf("diff: building %s tree: %v", e.Side, e.Err)
}

// Unwrap returns the underlying build error.
func (e *DiffError) Unwrap() error {
	return e.Err
}

// IsDiffError reports whether err is (or wraps) a DiffError.
func IsDiffError(err error) bool {
	var de *DiffError
	return errors.As(err, &de)
}
