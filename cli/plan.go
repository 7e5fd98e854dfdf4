package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/armtraj/motionplan/minjerk"
	"go.viam.com/armtraj/services/trajectory"
)

// PlanAction plans a single trajectory from --start to --target and prints it.
func PlanAction(c *cli.Context) error {
	logger := newLogger(c, "armtraj")
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	armConf := cfg.Arm
	if dof := c.Int(planFlagDoF); dof > 0 && dof != armConf.DoF {
		armConf.DoF = dof
		// limits from the config describe a different arm
		armConf.Limits = nil
	}

	format := c.String(planFlagFormat)
	if format != formatTable && format != formatCSV {
		return errors.Errorf("unknown format %q, expected %s or %s", format, formatTable, formatCSV)
	}

	svc, err := trajectory.New(&armConf, logger.Sublogger("arm"))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(c.Context); err != nil {
			logger.Warnw("failed to close session", "error", err)
		}
	}()

	if start := c.Float64Slice(planFlagStart); len(start) > 0 {
		if err := setStart(c, svc, start); err != nil {
			return err
		}
	}

	plan, err := svc.PlanTo(c.Context, c.Float64Slice(planFlagTarget), &trajectory.PlanOptions{
		Duration:       c.Float64(planFlagDuration),
		SampleInterval: c.Float64(planFlagDT),
	})
	if err != nil {
		return err
	}

	if path := c.String(planFlagPlot); path != "" {
		if err := savePlot(path, plan.Samples); err != nil {
			return err
		}
	}

	diagnostics := c.Bool(planFlagDiagnostics)
	tw := table.NewWriter()
	tw.SetOutputMirror(c.App.Writer)
	tw.AppendHeader(header(armConf.DoF, diagnostics))
	if diagnostics {
		for _, s := range plan.Samples {
			row := table.Row{fmt.Sprintf("%.4f", s.T)}
			for _, vec := range [][]float64{s.Position, s.Velocity, s.Acceleration, s.Jerk, s.Lambda1, s.Lambda2, s.Lambda3} {
				row = append(row, floatsToRow(vec)...)
			}
			tw.AppendRow(append(row, fmt.Sprintf("%.6f", s.Cost)))
		}
	} else {
		for _, positions := range minjerk.PositionTable(plan.Samples) {
			tw.AppendRow(append(table.Row{fmt.Sprintf("%.4f", positions[0])}, floatsToRow(positions[1:])...))
		}
	}

	if format == formatCSV {
		tw.RenderCSV()
	} else {
		tw.SetStyle(table.StyleLight)
		tw.Render()
	}
	return nil
}

// setStart moves the fresh session to start by planning there first.
func setStart(c *cli.Context, svc trajectory.Service, start []float64) error {
	if _, err := svc.PlanTo(c.Context, start, nil); err != nil {
		return errors.Wrap(err, "invalid start")
	}
	return nil
}

func header(dof int, diagnostics bool) table.Row {
	row := table.Row{"t"}
	prefixes := []string{"q"}
	if diagnostics {
		prefixes = append(prefixes, "dq", "ddq", "u", "lambda1", "lambda2", "lambda3")
	}
	for _, prefix := range prefixes {
		for i := 1; i <= dof; i++ {
			row = append(row, prefix+strconv.Itoa(i))
		}
	}
	if diagnostics {
		row = append(row, "J_acc")
	}
	return row
}

func floatsToRow(vals []float64) table.Row {
	return lo.Map(vals, func(v float64, _ int) interface{} {
		return fmt.Sprintf("%.6f", v)
	})
}
