package cli

import (
	"github.com/urfave/cli/v2"

	"go.viam.com/armtraj/config"
	"go.viam.com/armtraj/logging"
)

// loadConfig reads the --config file, or returns the defaults when none is given.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	path := c.String(generalFlagConfig)
	if path == "" {
		return config.NewDefaultConfig(), nil
	}
	return config.Read(c.Context, path, logger)
}

// newLogger logs to stderr so that stdout only carries command output.
func newLogger(c *cli.Context, name string) logging.Logger {
	if c.Bool(generalFlagDebug) {
		return logging.NewDebugLogger(name)
	}
	return logging.NewLogger(name)
}
