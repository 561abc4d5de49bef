// Package render draws survey figures (ship-track maps, echograms, ping
// interval charts) to PNG files with gonum/plot.
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const defaultDPI = 120

// savePNG draws plots onto one canvas of width x height, stacked in a single
// column, and writes it to path. The file is replaced atomically.
func savePNG(path string, width, height vg.Length, dpi int, plots ...*plot.Plot) (err error) {
	if len(plots) == 0 {
		return fmt.Errorf("render %s: nothing to draw", path)
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	dc := draw.New(img)

	if len(plots) == 1 {
		plots[0].Draw(dc)
	} else {
		rows := make([][]*plot.Plot, len(plots))
		for i, p := range plots {
			rows[i] = []*plot.Plot{p}
		}
		tiles := draw.Tiles{
			Rows:      len(plots),
			Cols:      1,
			PadTop:    vg.Points(4),
			PadBottom: vg.Points(4),
			PadY:      vg.Points(6),
		}
		canvases := plot.Align(rows, tiles, dc)
		for i, p := range plots {
			p.Draw(canvases[i][0])
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = (vgimg.PngCanvas{Canvas: img}).WriteTo(tmp); err != nil {
		return fmt.Errorf("render %s: encode png: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

// degreeTicks labels an axis in whole or fractional degrees with a
// hemisphere suffix, e.g. 124°W or 44.5°N.
func degreeTicks(positive, negative string) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		step := degreeStep(max - min)
		start := math.Ceil(min/step) * step
		var ticks []plot.Tick
		for v := start; v <= max+step*1e-9; v += step {
			v = math.Round(v/step) * step
			ticks = append(ticks, plot.Tick{Value: v, Label: degreeLabel(v, positive, negative)})
		}
		return ticks
	})
}

func degreeStep(span float64) float64 {
	for _, step := range []float64{0.1, 0.25, 0.5, 1, 2, 5, 10} {
		if span/step <= 8 {
			return step
		}
	}
	return 20
}

func degreeLabel(v float64, positive, negative string) string {
	suffix := positive
	if v < 0 {
		suffix = negative
	}
	if v == 0 {
		suffix = ""
	}
	return strconv.FormatFloat(math.Abs(v), 'f', -1, 64) + "°" + suffix
}
