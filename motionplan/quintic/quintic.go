// Package quintic fits degree five polynomials to position, velocity and acceleration
// constraints at both ends of a time interval.
package quintic

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/armtraj/utils/matrix"
)

// MinDuration is the shortest interval a polynomial can be fit over.
const MinDuration = 1e-9

// BoundaryCondition is the state of one joint at one end of the interval.
type BoundaryCondition struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

// Rest returns a boundary condition that is stationary at the given position.
func Rest(position float64) BoundaryCondition {
	return BoundaryCondition{Position: position}
}

// Coefficients holds a0..a5 of q(t) = a0 + a1 t + a2 t^2 + a3 t^3 + a4 t^4 + a5 t^5.
type Coefficients [matrix.Order]float64

// Position evaluates q(t).
func (a Coefficients) Position(t float64) float64 {
	return a[0] + t*(a[1]+t*(a[2]+t*(a[3]+t*(a[4]+t*a[5]))))
}

// Velocity evaluates dq/dt.
func (a Coefficients) Velocity(t float64) float64 {
	return a[1] + t*(2*a[2]+t*(3*a[3]+t*(4*a[4]+t*5*a[5])))
}

// Acceleration evaluates d²q/dt².
func (a Coefficients) Acceleration(t float64) float64 {
	return 2*a[2] + t*(6*a[3]+t*(12*a[4]+t*20*a[5]))
}

// Jerk evaluates d³q/dt³.
func (a Coefficients) Jerk(t float64) float64 {
	return 6*a[3] + t*(24*a[4]+t*60*a[5])
}

// Snap evaluates the time derivative of the jerk.
func (a Coefficients) Snap(t float64) float64 {
	return 24*a[4] + 120*a[5]*t
}

// Crackle is the second time derivative of the jerk, constant for a quintic.
func (a Coefficients) Crackle() float64 {
	return 120 * a[5]
}

// DurationTooSmallError is returned when a fit is requested over an interval that is too short to
// be numerically meaningful.
type DurationTooSmallError struct {
	Duration float64
}

// NewDurationTooSmallError returns an error for the given duration.
func NewDurationTooSmallError(duration float64) error {
	return &DurationTooSmallError{Duration: duration}
}

func (e *DurationTooSmallError) Error() string {
	return fmt.Sprintf("duration %g s must be greater than %g s", e.Duration, MinDuration)
}

// constraints builds the six rows of the boundary value system. The first three rows are q, dq and
// ddq at t=0, the last three are the same derivatives at t=duration.
func constraints(start, end BoundaryCondition, duration float64) (*mat.Dense, []float64) {
	t1 := duration
	t2 := t1 * t1
	t3 := t2 * t1
	t4 := t3 * t1
	t5 := t4 * t1

	a := mat.NewDense(matrix.Order, matrix.Order, []float64{
		1, 0, 0, 0, 0, 0,
		0, 1, 0, 0, 0, 0,
		0, 0, 2, 0, 0, 0,
		1, t1, t2, t3, t4, t5,
		0, 1, 2 * t1, 3 * t2, 4 * t3, 5 * t4,
		0, 0, 2, 6 * t1, 12 * t2, 20 * t3,
	})
	b := []float64{
		start.Position, start.Velocity, start.Acceleration,
		end.Position, end.Velocity, end.Acceleration,
	}
	return a, b
}

// Solve returns the coefficients of the quintic that matches start at t=0 and end at t=duration.
func Solve(start, end BoundaryCondition, duration float64) (Coefficients, error) {
	var coeffs Coefficients
	// also rejects NaN
	if !(duration > MinDuration) {
		return coeffs, NewDurationTooSmallError(duration)
	}
	if math.IsInf(duration, 1) {
		return coeffs, errors.New("duration must be finite")
	}

	a, b := constraints(start, end, duration)
	x, err := matrix.Solve6(a, b)
	if err != nil {
		return coeffs, errors.Wrap(err, "cannot fit quintic")
	}
	copy(coeffs[:], x)
	return coeffs, nil
}

// SolveJoints fits one quintic per joint, each on its own goroutine writing its own slot of the
// result.
func SolveJoints(starts, ends []BoundaryCondition, duration float64) ([]Coefficients, error) {
	if len(starts) != len(ends) {
		return nil, errors.Errorf("got %d start conditions but %d end conditions", len(starts), len(ends))
	}
	if !(duration > MinDuration) {
		return nil, NewDurationTooSmallError(duration)
	}
	if math.IsInf(duration, 1) {
		return nil, errors.New("duration must be finite")
	}

	out := make([]Coefficients, len(starts))
	var g errgroup.Group
	for i := range starts {
		i := i
		g.Go(func() error {
			coeffs, err := Solve(starts[i], ends[i], duration)
			if err != nil {
				return errors.Wrapf(err, "joint %d", i)
			}
			out[i] = coeffs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
