package trajectory

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armtraj/components/arm/dynamics"
)

const (
	// DefaultDoF is the number of joints of the arm served by default.
	DefaultDoF = 6
	// DefaultDuration is the plan duration used when a request leaves it out, in seconds.
	DefaultDuration = 1.0
	// DefaultSampleInterval is the sample spacing used when a request leaves it out, in seconds.
	DefaultSampleInterval = 0.02
	// DefaultTickInterval is how often the simulated arm is integrated.
	DefaultTickInterval = 10 * time.Millisecond
)

// Config configures one arm session.
type Config struct {
	DoF    int              `json:"dof" mapstructure:"dof"`
	Limits *dynamics.Limits `json:"limits,omitempty" mapstructure:"limits"`

	DefaultDurationSec       float64 `json:"default_duration_sec,omitempty" mapstructure:"default_duration_sec"`
	DefaultSampleIntervalSec float64 `json:"default_sample_interval_sec,omitempty" mapstructure:"default_sample_interval_sec"`

	// SimulateTime spins up a background worker that integrates the arm dynamics in real time.
	SimulateTime bool          `json:"simulate_time,omitempty" mapstructure:"simulate_time"`
	TickInterval time.Duration `json:"tick_interval,omitempty" mapstructure:"tick_interval"`
}

// NewDefaultConfig returns the configuration of a six joint arm with default limits.
func NewDefaultConfig() *Config {
	return &Config{
		DoF:                      DefaultDoF,
		DefaultDurationSec:       DefaultDuration,
		DefaultSampleIntervalSec: DefaultSampleInterval,
		TickInterval:             DefaultTickInterval,
	}
}

// Validate ensures all parts of the config are valid. Zero values are filled with defaults.
func (conf *Config) Validate(path string) error {
	if conf.DoF == 0 {
		conf.DoF = DefaultDoF
	}
	if conf.DefaultDurationSec == 0 {
		conf.DefaultDurationSec = DefaultDuration
	}
	if conf.DefaultSampleIntervalSec == 0 {
		conf.DefaultSampleIntervalSec = DefaultSampleInterval
	}
	if conf.TickInterval == 0 {
		conf.TickInterval = DefaultTickInterval
	}

	var err error
	if conf.DoF < 0 {
		err = multierr.Append(err, errors.Errorf("%s: dof must be positive, got %d", path, conf.DoF))
	}
	if conf.DefaultDurationSec < 0 {
		err = multierr.Append(err, errors.Errorf("%s: default_duration_sec must be positive", path))
	}
	if conf.DefaultSampleIntervalSec < 0 {
		err = multierr.Append(err, errors.Errorf("%s: default_sample_interval_sec must be positive", path))
	}
	if conf.TickInterval < 0 {
		err = multierr.Append(err, errors.Errorf("%s: tick_interval must be positive", path))
	}
	if conf.Limits != nil && conf.DoF > 0 {
		if limErr := conf.Limits.Validate(conf.DoF); limErr != nil {
			err = multierr.Append(err, errors.Wrapf(limErr, "%s.limits", path))
		}
	}
	return err
}
