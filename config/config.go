// Package config defines the structures to configure the arm trajectory server.
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armtraj/logging"
	"go.viam.com/armtraj/services/trajectory"
)

// DefaultBindAddress is where the server listens when no address is configured.
const DefaultBindAddress = "localhost:8848"

// Config describes one arm and how it is served.
type Config struct {
	ConfigFilePath string `json:"-" mapstructure:"-"`

	Arm      trajectory.Config `json:"arm" mapstructure:"arm"`
	Network  NetworkConfig     `json:"network" mapstructure:"network"`
	LogLevel string            `json:"log_level,omitempty" mapstructure:"log_level"`
	// LogFile additionally writes JSON logs to a rotated file.
	LogFile string `json:"log_file,omitempty" mapstructure:"log_file"`
}

// NetworkConfig describes the HTTP listener.
type NetworkConfig struct {
	BindAddress string `json:"bind_address,omitempty" mapstructure:"bind_address"`
	// AllowedOrigins restricts CORS. An empty list allows every origin.
	AllowedOrigins []string `json:"allowed_origins,omitempty" mapstructure:"allowed_origins"`
}

// Validate ensures all parts of the config are valid.
func (nc *NetworkConfig) Validate(path string) error {
	if nc.BindAddress == "" {
		nc.BindAddress = DefaultBindAddress
	}
	return nil
}

// Ensure validates every section of the config and fills in defaults.
func (c *Config) Ensure() error {
	var err error
	if armErr := c.Arm.Validate("arm"); armErr != nil {
		err = multierr.Append(err, armErr)
	}
	if netErr := c.Network.Validate("network"); netErr != nil {
		err = multierr.Append(err, netErr)
	}
	if c.LogLevel != "" {
		if _, levelErr := logging.LevelFromString(c.LogLevel); levelErr != nil {
			err = multierr.Append(err, errors.Wrap(levelErr, "log_level"))
		}
	}
	return err
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() logging.Level {
	if c.LogLevel == "" {
		return logging.INFO
	}
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// NewDefaultConfig returns the config used when no file is given.
func NewDefaultConfig() *Config {
	cfg := &Config{Arm: *trajectory.NewDefaultConfig()}
	// defaults always validate
	_ = cfg.Ensure()
	return cfg
}
