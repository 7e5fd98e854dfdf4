package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/armtraj/logging"
	"go.viam.com/armtraj/services/trajectory"
	"go.viam.com/armtraj/web"
)

// ServeAction runs the HTTP server until the command context is cancelled.
func ServeAction(c *cli.Context) (err error) {
	logger := newLogger(c, "armtraj")
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	if !c.Bool(generalFlagDebug) {
		logger.SetLevel(cfg.Level())
	}
	if cfg.LogFile != "" {
		fileAppender := logging.NewFileAppender(cfg.LogFile)
		logger.AddAppender(fileAppender)
		defer func() {
			err = multierr.Combine(err, fileAppender.Close())
		}()
	}
	if addr := c.String(serveFlagAddress); addr != "" {
		cfg.Network.BindAddress = addr
	}
	if c.Bool(serveFlagSimulate) {
		cfg.Arm.SimulateTime = true
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := trajectory.New(&cfg.Arm, logger.Sublogger("arm"), trajectory.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, svc.Close(c.Context), logger.Sync())
	}()

	server := web.New(svc, web.Options{
		AllowedOrigins: cfg.Network.AllowedOrigins,
		Gatherer:       reg,
		Pprof:          c.Bool(serveFlagPprof),
	}, logger.Sublogger("web"))
	return server.ListenAndServe(c.Context, cfg.Network.BindAddress)
}
