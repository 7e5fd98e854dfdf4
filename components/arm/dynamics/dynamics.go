// Package dynamics holds the last known joint state of an arm and a minimal double integrator used
// to simulate it. Positions and velocities are always saturated to the arm's limits; only
// structural problems such as a wrong vector length are reported as errors.
package dynamics

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// DefaultJointLimit is the default symmetric joint position limit, in radians.
	DefaultJointLimit = 3.14159
	// DefaultMaxVelocity is the default joint speed limit, in radians per second.
	DefaultMaxVelocity = 4.0
)

// Limits are the per joint bounds of an arm.
type Limits struct {
	MinPosition []float64 `json:"min_position" mapstructure:"min_position"`
	MaxPosition []float64 `json:"max_position" mapstructure:"max_position"`
	MaxVelocity []float64 `json:"max_velocity" mapstructure:"max_velocity"`
}

// DefaultLimits returns ±DefaultJointLimit and DefaultMaxVelocity for every joint.
func DefaultLimits(dof int) *Limits {
	l := &Limits{
		MinPosition: make([]float64, dof),
		MaxPosition: make([]float64, dof),
		MaxVelocity: make([]float64, dof),
	}
	for i := 0; i < dof; i++ {
		l.MinPosition[i] = -DefaultJointLimit
		l.MaxPosition[i] = DefaultJointLimit
		l.MaxVelocity[i] = DefaultMaxVelocity
	}
	return l
}

// Validate checks that the limits describe dof joints and that every range is non-empty.
func (l *Limits) Validate(dof int) error {
	var err error
	for _, field := range []struct {
		name string
		vals []float64
	}{
		{"min_position", l.MinPosition},
		{"max_position", l.MaxPosition},
		{"max_velocity", l.MaxVelocity},
	} {
		if len(field.vals) != dof {
			err = multierr.Append(err, NewDimensionMismatchError(field.name, len(field.vals), dof))
		}
	}
	if err != nil {
		return err
	}
	for i := 0; i < dof; i++ {
		if !(l.MinPosition[i] <= l.MaxPosition[i]) {
			err = multierr.Append(err, errors.Errorf("joint %d: min position %g is above max position %g",
				i, l.MinPosition[i], l.MaxPosition[i]))
		}
		if !(l.MaxVelocity[i] >= 0) {
			err = multierr.Append(err, errors.Errorf("joint %d: max velocity %g must not be negative", i, l.MaxVelocity[i]))
		}
	}
	return err
}

func (l *Limits) clone() *Limits {
	return &Limits{
		MinPosition: append([]float64(nil), l.MinPosition...),
		MaxPosition: append([]float64(nil), l.MaxPosition...),
		MaxVelocity: append([]float64(nil), l.MaxVelocity...),
	}
}

// State is a snapshot of joint positions (rad) and velocities (rad/s).
type State struct {
	Position []float64 `json:"q"`
	Velocity []float64 `json:"dq"`
}

// DimensionMismatchError is returned when a vector does not have one entry per joint.
type DimensionMismatchError struct {
	Name     string
	Got, DoF int
}

// NewDimensionMismatchError returns an error for the named vector.
func NewDimensionMismatchError(name string, got, dof int) error {
	return &DimensionMismatchError{Name: name, Got: got, DoF: dof}
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s has %d values but the arm has %d degrees of freedom", e.Name, e.Got, e.DoF)
}

// Model is the state of one arm. It is not safe for concurrent use; the owner serializes access.
type Model struct {
	dof    int
	limits *Limits

	q, dq []float64
	tau   []float64
}

// NewModel returns a model at rest at the zero pose. A nil limits uses DefaultLimits. The limits are
// copied and never change afterwards.
func NewModel(dof int, limits *Limits) (*Model, error) {
	if dof <= 0 {
		return nil, errors.Errorf("degrees of freedom must be positive, got %d", dof)
	}
	if limits == nil {
		limits = DefaultLimits(dof)
	}
	if err := limits.Validate(dof); err != nil {
		return nil, errors.Wrap(err, "invalid joint limits")
	}
	m := &Model{
		dof:    dof,
		limits: limits.clone(),
		q:      make([]float64, dof),
		dq:     make([]float64, dof),
		tau:    make([]float64, dof),
	}
	m.clamp()
	return m, nil
}

// DoF returns the number of joints.
func (m *Model) DoF() int {
	return m.dof
}

// Limits returns a copy of the joint limits.
func (m *Model) Limits() *Limits {
	return m.limits.clone()
}

// State returns a copy of the current state.
func (m *Model) State() State {
	return State{
		Position: append([]float64(nil), m.q...),
		Velocity: append([]float64(nil), m.dq...),
	}
}

// Torque returns a copy of the commanded torques.
func (m *Model) Torque() []float64 {
	return append([]float64(nil), m.tau...)
}

// SetState stores q and dq, saturated to the limits.
func (m *Model) SetState(q, dq []float64) error {
	if len(q) != m.dof {
		return NewDimensionMismatchError("position", len(q), m.dof)
	}
	if len(dq) != m.dof {
		return NewDimensionMismatchError("velocity", len(dq), m.dof)
	}
	copy(m.q, q)
	copy(m.dq, dq)
	m.clamp()
	return nil
}

// SetTorque stores the torques applied by the next IntegrateStep calls.
func (m *Model) SetTorque(tau []float64) error {
	if len(tau) != m.dof {
		return NewDimensionMismatchError("torque", len(tau), m.dof)
	}
	copy(m.tau, tau)
	return nil
}

// IntegrateStep advances the model by dt seconds with acceleration equal to the torque. Velocity
// is updated and clamped first, then position is updated with the new velocity and clamped.
func (m *Model) IntegrateStep(dt float64) {
	for i := 0; i < m.dof; i++ {
		m.dq[i] = clamp(m.dq[i]+dt*m.tau[i], -m.limits.MaxVelocity[i], m.limits.MaxVelocity[i])
		m.q[i] = clamp(m.q[i]+dt*m.dq[i], m.limits.MinPosition[i], m.limits.MaxPosition[i])
	}
}

func (m *Model) clamp() {
	for i := 0; i < m.dof; i++ {
		m.q[i] = clamp(m.q[i], m.limits.MinPosition[i], m.limits.MaxPosition[i])
		m.dq[i] = clamp(m.dq[i], -m.limits.MaxVelocity[i], m.limits.MaxVelocity[i])
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
