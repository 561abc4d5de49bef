package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"echosurvey/internal/config"
	"echosurvey/internal/extent"
	"echosurvey/internal/geodata"
	"echosurvey/internal/services"
)

var (
	landColor    = color.RGBA{R: 0xe8, G: 0xe2, B: 0xcc, A: 0xff}
	coastColor   = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	contourColor = color.RGBA{R: 0x9e, G: 0xbc, B: 0xda, A: 0xff}
	markerColor  = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// Track is one labelled polyline on a ship-track map.
type Track struct {
	Label     string
	Positions []extent.Position
}

// Landmark is a named reference point.
type Landmark struct {
	Name     string
	Position extent.Position
}

// TrackMap describes a ship-track figure. Track i is drawn in
// Colors[i%len(Colors)].
type TrackMap struct {
	Title     string
	Extent    extent.Box
	Tracks    []Track
	Colors    []color.Color
	Coastline geodata.Layer
	Contours  geodata.Layer
	Landmarks []Landmark
	DPI       int
}

// Palette resolves #RRGGBB strings into colours.
func Palette(hex []string) ([]color.Color, error) {
	out := make([]color.Color, 0, len(hex))
	for _, h := range hex {
		c, err := config.ParseHexColor(h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// LandmarksFromConfig converts configured landmarks.
func LandmarksFromConfig(marks []config.Landmark) []Landmark {
	out := make([]Landmark, 0, len(marks))
	for _, m := range marks {
		out = append(out, Landmark{Name: m.Name, Position: extent.Position{Lon: m.Lon, Lat: m.Lat}})
	}
	return out
}

// Save renders the map to a PNG at path. Landmarks outside the extent are
// omitted. Tracks with no finite positions are left out of the figure.
func (m TrackMap) Save(path string) error {
	if !m.Extent.Valid() {
		return fmt.Errorf("render %s: invalid extent %v", path, m.Extent.Slice())
	}
	if len(m.Colors) == 0 {
		return fmt.Errorf("render %s: empty track palette", path)
	}

	p := plot.New()
	p.Title.Text = m.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.X.Tick.Marker = degreeTicks("E", "W")
	p.Y.Tick.Marker = degreeTicks("N", "S")
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(7)

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}

	if err := m.addBackdrop(p); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	p.Add(grid)

	drawn := 0
	for i, track := range m.Tracks {
		xys := finiteXYs(track.Positions)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("render %s: track %q: %w", path, track.Label, err)
		}
		line.LineStyle.Color = m.Colors[i%len(m.Colors)]
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(track.Label, line)
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("render %s: %w: no track has valid positions", path, services.ErrMissingData)
	}

	if err := m.addLandmarks(p); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	// Adding plotters widens the axes to their data; pin them to the extent last.
	p.X.Min, p.X.Max = m.Extent.West, m.Extent.East
	p.Y.Min, p.Y.Max = m.Extent.South, m.Extent.North

	return savePNG(path, 8*vg.Inch, 8*vg.Inch, m.DPI, p)
}

func (m TrackMap) addBackdrop(p *plot.Plot) error {
	visible := m.Extent
	for _, ring := range m.Coastline.Within(visible).Rings {
		poly, err := plotter.NewPolygon(finiteXYs(ring))
		if err != nil {
			return fmt.Errorf("coastline: %w", err)
		}
		poly.Color = landColor
		poly.LineStyle.Color = coastColor
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
	}
	for _, layer := range []struct {
		lines []geodata.Path
		color color.Color
	}{
		{m.Contours.Within(visible).Lines, contourColor},
		{m.Coastline.Within(visible).Lines, coastColor},
	} {
		for _, path := range layer.lines {
			line, err := plotter.NewLine(finiteXYs(path))
			if err != nil {
				return fmt.Errorf("backdrop: %w", err)
			}
			line.LineStyle.Color = layer.color
			line.LineStyle.Width = vg.Points(0.5)
			p.Add(line)
		}
	}
	return nil
}

func (m TrackMap) addLandmarks(p *plot.Plot) error {
	var xys plotter.XYs
	var names []string
	for _, lm := range m.Landmarks {
		if !m.Extent.Contains(lm.Position) {
			continue
		}
		xys = append(xys, plotter.XY{X: lm.Position.Lon, Y: lm.Position.Lat})
		names = append(names, lm.Name)
	}
	if len(xys) == 0 {
		return nil
	}
	points, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("landmarks: %w", err)
	}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Color = markerColor
	points.GlyphStyle.Radius = vg.Points(2)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return fmt.Errorf("landmark labels: %w", err)
	}
	labels.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(-3)}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(7)
	}
	p.Add(points, labels)
	return nil
}

func finiteXYs(positions []extent.Position) plotter.XYs {
	xys := make(plotter.XYs, 0, len(positions))
	for _, pos := range positions {
		if math.IsNaN(pos.Lon) || math.IsNaN(pos.Lat) || math.IsInf(pos.Lon, 0) || math.IsInf(pos.Lat, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: pos.Lon, Y: pos.Lat})
	}
	return xys
}
