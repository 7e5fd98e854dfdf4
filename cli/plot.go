package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/armtraj/motionplan/minjerk"
)

// savePlot draws one line per joint position against time. The format follows the extension of path.
func savePlot(path string, samples []minjerk.Sample) error {
	if len(samples) == 0 {
		return errors.New("nothing to plot")
	}
	p := plot.New()
	p.Title.Text = "minimum jerk trajectory"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "q (rad)"
	p.Add(plotter.NewGrid())

	for joint := range samples[0].Position {
		pts := make(plotter.XYs, 0, len(samples))
		for _, s := range samples {
			pts = append(pts, plotter.XY{X: s.T, Y: s.Position[joint]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "cannot plot joint %d", joint+1)
		}
		line.Width = vg.Points(1)
		line.Color = plotutil.Color(joint)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("q%d", joint+1), line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "cannot save plot")
	}
	return nil
}
