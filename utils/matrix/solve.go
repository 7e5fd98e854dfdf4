// Package matrix contains small dense linear algebra routines used by the planners.
package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// Order is the size of the systems handled by Solve6. It is the number of coefficients of a
	// quintic polynomial, and changing the polynomial degree requires changing this with it.
	Order = 6

	// SingularTolerance is the smallest pivot magnitude accepted during elimination.
	SingularTolerance = 1e-12
)

// Solve6 solves a*x = b for a 6x6 matrix a using Gaussian elimination with partial pivoting.
// The largest magnitude entry of each column is swapped into the pivot row, the pivot row is
// normalized, and the solution is recovered by back-substitution. Neither a nor b is modified.
// A nil a, including a nil gonum dense type, is reported as a DimensionError.
func Solve6(a mat.Matrix, b []float64) ([]float64, error) {
	if isNil(a) {
		return nil, NewDimensionError(0, 0, len(b))
	}
	rows, cols := a.Dims()
	if rows != Order || cols != Order || len(b) != Order {
		return nil, NewDimensionError(rows, cols, len(b))
	}

	// augmented [a | b]
	var aug [Order][Order + 1]float64
	for r := 0; r < Order; r++ {
		for c := 0; c < Order; c++ {
			aug[r][c] = a.At(r, c)
		}
		aug[r][Order] = b[r]
	}

	for col := 0; col < Order; col++ {
		piv := col
		best := math.Abs(aug[col][col])
		for r := col + 1; r < Order; r++ {
			if v := math.Abs(aug[r][col]); v > best {
				best = v
				piv = r
			}
		}
		// NaN compares false against everything, so check the negation.
		if !(best >= SingularTolerance) {
			return nil, NewSingularSystemError(col, best)
		}
		if piv != col {
			aug[piv], aug[col] = aug[col], aug[piv]
		}

		diag := aug[col][col]
		for c := col; c <= Order; c++ {
			aug[col][c] /= diag
		}
		for r := col + 1; r < Order; r++ {
			f := aug[r][col]
			if f == 0 {
				continue
			}
			for c := col; c <= Order; c++ {
				aug[r][c] -= f * aug[col][c]
			}
		}
	}

	x := make([]float64, Order)
	for r := Order - 1; r >= 0; r-- {
		s := aug[r][Order]
		for c := r + 1; c < Order; c++ {
			s -= aug[r][c] * x[c]
		}
		x[r] = s
	}
	return x, nil
}

// isNil reports whether a is nil or a nil pointer to one of gonum's concrete matrix types.
func isNil(a mat.Matrix) bool {
	switch m := a.(type) {
	case nil:
		return true
	case *mat.Dense:
		return m == nil
	case *mat.SymDense:
		return m == nil
	case *mat.TriDense:
		return m == nil
	case *mat.BandDense:
		return m == nil
	case *mat.DiagDense:
		return m == nil
	case *mat.VecDense:
		return m == nil
	default:
		return false
	}
}
