package linalg

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when operand shapes are incompatible.
var ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

// DegenerateGeometryError reports a numeric degeneracy (singular matrix,
// zero mass, zero-length direction, non-finite state) that the shape
// matcher cannot recover from.
type DegenerateGeometryError struct {
	Op     string
	Detail string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("linalg: degenerate geometry in %s: %s", e.Op, e.Detail)
}

// Degenerate builds a *DegenerateGeometryError for op.
func Degenerate(op, format string, args ...any) error {
	return &DegenerateGeometryError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// IsDegenerate reports whether err wraps a *DegenerateGeometryError.
func IsDegenerate(err error) bool {
	var dg *DegenerateGeometryError
	return errors.As(err, &dg)
}

func mismatch(op string, ar, ac, br, bc int) error {
	return fmt.Errorf("%w: %s %dx%d with %dx%d", ErrDimensionMismatch, op, ar, ac, br, bc)
}
