package render

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"echosurvey/internal/echodata"
	"echosurvey/internal/services"
)

const (
	maxEchogramPings   = 800
	maxEchogramSamples = 300
)

// EchogramPanel is one frequency channel: Values is indexed [ping][sample].
type EchogramPanel struct {
	Frequency float64
	Times     []time.Time
	Range     []float64
	Values    [][]float64
}

// Echogram stacks one time-depth panel per frequency on a fixed Sv scale.
type Echogram struct {
	Title  string
	Panels []EchogramPanel
	SvMin  float64
	SvMax  float64
	DPI    int
}

// PanelsFromSv concatenates calibrated files along the ping axis and
// extracts the requested frequencies. Files lacking a frequency contribute
// nothing to that panel; a frequency no file carries is omitted.
func PanelsFromSv(files []echodata.Sv, frequencies []float64) []EchogramPanel {
	var panels []EchogramPanel
	for _, freq := range frequencies {
		panel := EchogramPanel{Frequency: freq}
		for _, sv := range files {
			ch, ok := sv.Channel(freq)
			if !ok {
				continue
			}
			if len(sv.Range) > len(panel.Range) {
				panel.Range = slices.Clone([]float64(sv.Range))
			}
			panel.Times = append(panel.Times, sv.PingTime...)
			for _, samples := range sv.Values[ch] {
				panel.Values = append(panel.Values, []float64(samples))
			}
		}
		if len(panel.Times) > 0 {
			panels = append(panels, panel)
		}
	}
	return panels
}

// Save renders the echogram to path. Panels need at least two pings and two
// range samples.
func (e Echogram) Save(path string) error {
	if e.SvMin >= e.SvMax {
		return fmt.Errorf("render %s: Sv scale [%v, %v] is empty", path, e.SvMin, e.SvMax)
	}
	var plots []*plot.Plot
	for i, panel := range e.Panels {
		if len(panel.Times) < 2 || len(panel.Range) < 2 {
			continue
		}
		p := plot.New()
		p.Title.Text = strconv.FormatFloat(panel.Frequency/1000, 'f', -1, 64) + " kHz"
		if i == 0 && e.Title != "" {
			p.Title.Text = e.Title + "  " + p.Title.Text
		}
		p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
		p.Y.Label.Text = "Range (m)"
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

		heat := plotter.NewHeatMap(newSvGrid(panel, e.SvMin, e.SvMax), palette.Heat(64, 1))
		heat.Min, heat.Max = e.SvMin, e.SvMax
		heat.NaN = color.Transparent
		p.Add(heat)
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return fmt.Errorf("render %s: %w: no frequency panel has enough data", path, services.ErrMissingData)
	}
	plots[len(plots)-1].X.Label.Text = "Ping time (UTC)"
	return savePNG(path, 12*vg.Inch, vg.Length(len(plots))*3*vg.Inch, e.DPI, plots...)
}

// svGrid adapts a panel to plotter.GridXYZ, clamping values into the colour
// scale and thinning pings and samples beyond the drawing limits.
type svGrid struct {
	x      []float64
	y      []float64
	values [][]float64
	pings  []int
	rows   []int
	min    float64
	max    float64
}

func newSvGrid(panel EchogramPanel, min, max float64) *svGrid {
	g := &svGrid{values: panel.Values, min: min, max: max}
	g.pings = strideIndices(len(panel.Times), maxEchogramPings)
	g.rows = strideIndices(len(panel.Range), maxEchogramSamples)
	g.x = make([]float64, len(g.pings))
	for i, idx := range g.pings {
		g.x[i] = float64(panel.Times[idx].UnixNano()) / 1e9
	}
	g.y = make([]float64, len(g.rows))
	for i, idx := range g.rows {
		g.y[i] = panel.Range[idx]
	}
	return g
}

func (g *svGrid) Dims() (c, r int) { return len(g.x), len(g.y) }
func (g *svGrid) X(c int) float64  { return g.x[c] }
func (g *svGrid) Y(r int) float64  { return g.y[r] }

func (g *svGrid) Z(c, r int) float64 {
	samples := g.values[g.pings[c]]
	idx := g.rows[r]
	if idx >= len(samples) {
		return math.NaN()
	}
	v := samples[idx]
	if math.IsNaN(v) {
		return v
	}
	return math.Min(math.Max(v, g.min), g.max)
}

func strideIndices(n, limit int) []int {
	step := 1
	if n > limit {
		step = (n + limit - 1) / limit
	}
	out := make([]int, 0, n/step+1)
	for i := 0; i < n; i += step {
		out = append(out, i)
	}
	return out
}
