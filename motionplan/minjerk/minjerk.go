// Package minjerk plans point to point joint trajectories that minimize the integral of squared
// jerk, and reports the matching optimal control quantities.
//
// Each joint is modelled as a triple integrator with state (q, dq, ddq) and control u = dddq.
// The cost J = ∫ ½‖u‖² dt is minimized, with velocity and acceleration pinned to zero at both
// ends, by a quintic in time. Stationarity of the Hamiltonian H = ½u² + λ1·dq + λ2·ddq + λ3·u
// gives u* = -λ3, and the adjoint equations then fix λ2 = du/dt and λ1 = -d²u/dt².
package minjerk

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/armtraj/logging"
	"go.viam.com/armtraj/motionplan/quintic"
)

// minSampleInterval guards the sample count against a zero interval.
const minSampleInterval = 1e-9

// Sample is the planned state of every joint at one instant.
type Sample struct {
	T            float64
	Position     []float64
	Velocity     []float64
	Acceleration []float64
	// Jerk is the control input u.
	Jerk []float64

	// Costates of the position, velocity and acceleration states.
	Lambda1 []float64
	Lambda2 []float64
	Lambda3 []float64

	// Cost is the running ½‖u‖² integral up to T.
	Cost float64
}

func newSample(t float64, dof int) Sample {
	// one backing array keeps the seven vectors of a sample together
	buf := make([]float64, 7*dof)
	return Sample{
		T:            t,
		Position:     buf[0*dof : 1*dof : 1*dof],
		Velocity:     buf[1*dof : 2*dof : 2*dof],
		Acceleration: buf[2*dof : 3*dof : 3*dof],
		Jerk:         buf[3*dof : 4*dof : 4*dof],
		Lambda1:      buf[4*dof : 5*dof : 5*dof],
		Lambda2:      buf[5*dof : 6*dof : 6*dof],
		Lambda3:      buf[6*dof : 7*dof : 7*dof],
	}
}

// DimensionMismatchError is returned when a joint vector does not have one entry per joint.
type DimensionMismatchError struct {
	Name     string
	Got, DoF int
}

// NewDimensionMismatchError returns an error for the named vector.
func NewDimensionMismatchError(name string, got, dof int) error {
	return &DimensionMismatchError{Name: name, Got: got, DoF: dof}
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("number of values in %s does not match the degrees of freedom: got %d, expected %d",
		e.Name, e.Got, e.DoF)
}

// Planner computes minimum jerk trajectories for an arm with a fixed number of joints.
type Planner struct {
	dof    int
	logger logging.Logger
}

// NewPlanner returns a planner for dof joints.
func NewPlanner(dof int, logger logging.Logger) (*Planner, error) {
	if dof <= 0 {
		return nil, errors.Errorf("degrees of freedom must be positive, got %d", dof)
	}
	return &Planner{dof: dof, logger: logger}, nil
}

// DoF returns the number of joints the planner was built for.
func (p *Planner) DoF() int {
	return p.dof
}

// SampleCount returns the number of intervals N for a plan; a plan has N+1 samples.
func SampleCount(duration, dt float64) int {
	return max(2, int(math.Round(duration/math.Max(dt, minSampleInterval))))
}

// Plan returns samples from qStart at t=0 to qTarget at t=duration, spaced dt apart. The last
// sample is always at exactly duration. Either the full trajectory or an error is returned.
func (p *Planner) Plan(qStart, qTarget []float64, duration, dt float64) ([]Sample, error) {
	if len(qStart) != p.dof {
		return nil, NewDimensionMismatchError("start", len(qStart), p.dof)
	}
	if len(qTarget) != p.dof {
		return nil, NewDimensionMismatchError("target", len(qTarget), p.dof)
	}
	if !(dt > 0) {
		return nil, errors.Errorf("sample interval must be positive, got %g", dt)
	}

	starts := make([]quintic.BoundaryCondition, p.dof)
	ends := make([]quintic.BoundaryCondition, p.dof)
	for i := range starts {
		starts[i] = quintic.Rest(qStart[i])
		ends[i] = quintic.Rest(qTarget[i])
	}
	coeffs, err := quintic.SolveJoints(starts, ends, duration)
	if err != nil {
		return nil, err
	}

	n := SampleCount(duration, dt)
	samples := make([]Sample, 0, n+1)
	cost := 0.0
	for k := 0; k <= n; k++ {
		t := math.Min(float64(k)*dt, duration)
		if k == n {
			t = duration
		}

		s := newSample(t, p.dof)
		for i, a := range coeffs {
			s.Position[i] = a.Position(t)
			s.Velocity[i] = a.Velocity(t)
			s.Acceleration[i] = a.Acceleration(t)
			u := a.Jerk(t)
			s.Jerk[i] = u

			s.Lambda3[i] = -u
			s.Lambda2[i] = a.Snap(t)
			s.Lambda1[i] = -a.Crackle()
		}
		if k > 0 {
			cost += 0.5 * floats.Dot(s.Jerk, s.Jerk) * dt
		}
		s.Cost = cost
		samples = append(samples, s)
	}

	if p.logger != nil {
		p.logger.Debugw("planned minimum jerk trajectory",
			"dof", p.dof, "duration", duration, "dt", dt, "samples", len(samples), "cost", cost)
	}
	return samples, nil
}

// PositionTable flattens samples into rows of [t, q1, ..., qn].
func PositionTable(samples []Sample) [][]float64 {
	rows := make([][]float64, len(samples))
	for k, s := range samples {
		row := make([]float64, 1+len(s.Position))
		row[0] = s.T
		copy(row[1:], s.Position)
		rows[k] = row
	}
	return rows
}
