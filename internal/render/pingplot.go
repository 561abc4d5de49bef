package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"echosurvey/internal/services"
)

// PingIntervals charts successive ping intervals (seconds) against their
// index, titled with the observation path.
func PingIntervals(path, title string, intervals []float64, dpi int) error {
	if len(intervals) == 0 {
		return fmt.Errorf("render %s: %w: fewer than two pings", path, services.ErrMissingData)
	}
	xys := make(plotter.XYs, len(intervals))
	for i, v := range intervals {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(8)
	p.X.Label.Text = "Ping Interval Index"
	p.Y.Label.Text = "Ping Intervals (s)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	p.Add(line)

	return savePNG(path, 6.4*vg.Inch, 4.8*vg.Inch, dpi, p)
}
