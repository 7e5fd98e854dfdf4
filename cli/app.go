// Package cli contains the armtraj command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	serveFlagAddress  = "address"
	serveFlagSimulate = "simulate-time"
	serveFlagPprof    = "pprof"

	planFlagDoF         = "dof"
	planFlagStart       = "start"
	planFlagTarget      = "target"
	planFlagDuration    = "duration"
	planFlagDT          = "dt"
	planFlagFormat      = "format"
	planFlagDiagnostics = "diagnostics"
	planFlagPlot        = "plot"

	formatTable = "table"
	formatCSV   = "csv"
)

// NewApp returns the armtraj application writing to out and errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "armtraj",
		Usage:           "plan minimum jerk arm trajectories",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    generalFlagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the plan API over HTTP",
				Action: ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  serveFlagAddress,
						Usage: "address to listen on, overrides the config",
					},
					&cli.BoolFlag{
						Name:  serveFlagSimulate,
						Usage: "integrate the arm dynamics in real time",
					},
					&cli.BoolFlag{
						Name:  serveFlagPprof,
						Usage: "serve pprof under /debug/pprof",
					},
				},
			},
			{
				Name:   "plan",
				Usage:  "plan one trajectory and print it",
				Action: PlanAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  planFlagDoF,
						Usage: "number of joints, overrides the config",
					},
					&cli.Float64SliceFlag{
						Name:  planFlagStart,
						Usage: "comma separated start joint positions in radians, zeros when omitted",
					},
					&cli.Float64SliceFlag{
						Name:     planFlagTarget,
						Usage:    "comma separated target joint positions in radians",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  planFlagDuration,
						Usage: "duration of the move in seconds",
					},
					&cli.Float64Flag{
						Name:  planFlagDT,
						Usage: "sample interval in seconds",
					},
					&cli.StringFlag{
						Name:  planFlagFormat,
						Value: formatTable,
						Usage: "output format: table or csv",
					},
					&cli.BoolFlag{
						Name:  planFlagDiagnostics,
						Usage: "include velocity, acceleration, jerk, costates and cost",
					},
					&cli.StringFlag{
						Name:  planFlagPlot,
						Usage: "also save the joint positions over time to `FILE` (png, svg or pdf)",
					},
				},
			},
		},
	}
}
