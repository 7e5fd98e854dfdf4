package matrix

import "fmt"

// DimensionError is returned when a system is not Order x Order or the right hand side does not
// have Order entries.
type DimensionError struct {
	Rows, Cols, RHS int
}

// NewDimensionError returns an error describing the shape that was given.
func NewDimensionError(rows, cols, rhs int) error {
	return &DimensionError{Rows: rows, Cols: cols, RHS: rhs}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("expected a %dx%d system with %d right hand side values, got %dx%d with %d",
		Order, Order, Order, e.Rows, e.Cols, e.RHS)
}

// SingularSystemError is returned when no usable pivot exists for a column.
type SingularSystemError struct {
	Column int
	Pivot  float64
}

// NewSingularSystemError returns an error for the column whose best pivot was too small.
func NewSingularSystemError(column int, pivot float64) error {
	return &SingularSystemError{Column: column, Pivot: pivot}
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("singular system: best pivot %g in column %d is below %g", e.Pivot, e.Column, SingularTolerance)
}
