// Package trajectory serves minimum jerk plans for one arm. A session remembers the last commanded
// pose so that every plan starts where the previous one ended.
package trajectory

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.viam.com/utils"

	"go.viam.com/armtraj/components/arm/dynamics"
	"go.viam.com/armtraj/logging"
	"go.viam.com/armtraj/motionplan/minjerk"
)

// Service plans trajectories for a single arm and tracks its state between plans.
type Service interface {
	// PlanTo plans from the current pose to target, then commits target as the new pose at rest.
	PlanTo(ctx context.Context, target []float64, opts *PlanOptions) (*Plan, error)
	State(ctx context.Context) (dynamics.State, error)
	SetTorque(ctx context.Context, tau []float64) error
	// Reset puts the arm back at the zero pose with no velocity or torque.
	Reset(ctx context.Context) error
	// Defaults returns the duration and sample interval used for zero PlanOptions fields.
	Defaults() PlanOptions
	ID() uuid.UUID
	DoF() int
	Close(ctx context.Context) error
}

// PlanOptions override the configured defaults for one plan. Zero fields use the defaults.
type PlanOptions struct {
	Duration       float64
	SampleInterval float64
}

// Plan is the result of one PlanTo call.
type Plan struct {
	SessionID      uuid.UUID
	Start          []float64
	Target         []float64
	Duration       float64
	SampleInterval float64
	Samples        []minjerk.Sample
}

// Option configures optional parts of a session.
type Option func(*session)

// WithClock replaces the wall clock driving the simulation.
func WithClock(clk clock.Clock) Option {
	return func(s *session) {
		s.clock = clk
	}
}

// WithRegisterer registers the session metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *session) {
		s.registerer = reg
	}
}

type session struct {
	id     uuid.UUID
	conf   Config
	logger logging.Logger

	planner *minjerk.Planner

	clock      clock.Clock
	registerer prometheus.Registerer
	metrics    *metrics

	// mu guards model and lastUpdated. PlanTo holds it across read, plan and commit so concurrent
	// plans cannot start from a stale pose.
	mu          sync.Mutex
	model       *dynamics.Model
	lastUpdated time.Time

	timeSimulation *utils.StoppableWorkers
}

// New returns a session for the given config.
func New(conf *Config, logger logging.Logger, opts ...Option) (Service, error) {
	if conf == nil {
		conf = NewDefaultConfig()
	}
	validated := *conf
	if err := validated.Validate("arm"); err != nil {
		return nil, err
	}

	model, err := dynamics.NewModel(validated.DoF, validated.Limits)
	if err != nil {
		return nil, err
	}
	planner, err := minjerk.NewPlanner(validated.DoF, logger.Sublogger("planner"))
	if err != nil {
		return nil, err
	}

	s := &session{
		id:      uuid.New(),
		conf:    validated,
		logger:  logger,
		planner: planner,
		model:   model,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics, err = newMetrics(s.registerer)
	if err != nil {
		return nil, err
	}

	if validated.SimulateTime {
		s.startSimulation()
	}
	logger.Infow("arm session started", "id", s.id, "dof", validated.DoF, "simulate_time", validated.SimulateTime)
	return s, nil
}

func (s *session) ID() uuid.UUID {
	return s.id
}

func (s *session) Defaults() PlanOptions {
	return PlanOptions{Duration: s.conf.DefaultDurationSec, SampleInterval: s.conf.DefaultSampleIntervalSec}
}

func (s *session) DoF() int {
	return s.conf.DoF
}

func (s *session) PlanTo(ctx context.Context, target []float64, opts *PlanOptions) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	duration, dt := s.conf.DefaultDurationSec, s.conf.DefaultSampleIntervalSec
	if opts != nil {
		if opts.Duration != 0 {
			duration = opts.Duration
		}
		if opts.SampleInterval != 0 {
			dt = opts.SampleInterval
		}
	}

	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.model.State()
	samples, err := s.planner.Plan(current.Position, target, duration, dt)
	if err != nil {
		s.metrics.planErrors.Inc()
		return nil, errors.Wrap(err, "cannot plan trajectory")
	}
	if err := s.model.SetState(target, make([]float64, len(target))); err != nil {
		s.metrics.planErrors.Inc()
		return nil, err
	}

	s.metrics.plans.Inc()
	s.metrics.planSeconds.Observe(s.clock.Since(start).Seconds())
	s.metrics.samples.Observe(float64(len(samples)))
	s.logger.CDebugw(ctx, "committed plan", "session", s.id, "duration", duration, "dt", dt, "samples", len(samples))

	return &Plan{
		SessionID:      s.id,
		Start:          current.Position,
		Target:         append([]float64(nil), target...),
		Duration:       duration,
		SampleInterval: dt,
		Samples:        samples,
	}, nil
}

func (s *session) State(ctx context.Context) (dynamics.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.State(), nil
}

func (s *session) SetTorque(ctx context.Context, tau []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.SetTorque(tau)
}

func (s *session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	zeros := make([]float64, s.conf.DoF)
	if err := s.model.SetTorque(zeros); err != nil {
		return err
	}
	return s.model.SetState(zeros, zeros)
}

func (s *session) Close(ctx context.Context) error {
	if s.timeSimulation != nil {
		s.timeSimulation.Stop()
	}
	s.metrics.unregister()
	return nil
}
