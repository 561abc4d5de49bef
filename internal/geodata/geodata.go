// Package geodata loads map backdrop layers (coastlines, bathymetry
// contours) from GeoJSON files.
package geodata

import (
	"fmt"
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"echosurvey/internal/extent"
)

// Path is an ordered run of positions.
type Path []extent.Position

// Layer holds the open paths and closed rings found in one GeoJSON file.
// Rings come from polygon exteriors; holes are dropped.
type Layer struct {
	Name  string
	Lines []Path
	Rings []Path
}

// Empty reports whether the layer has nothing to draw.
func (l Layer) Empty() bool {
	return len(l.Lines) == 0 && len(l.Rings) == 0
}

// Load reads a FeatureCollection (or a single Feature or Geometry) from path.
// An empty path yields an empty layer.
func Load(path string) (Layer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Layer{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layer{}, fmt.Errorf("read geojson %s: %w", path, err)
	}
	layer, err := Parse(data)
	if err != nil {
		return Layer{}, fmt.Errorf("parse geojson %s: %w", path, err)
	}
	layer.Name = path
	return layer, nil
}

// Parse decodes GeoJSON into a Layer.
func Parse(data []byte) (Layer, error) {
	var layer Layer
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		for _, f := range fc.Features {
			layer.addGeometry(f.Geometry)
		}
		return layer, nil
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		layer.addGeometry(f.Geometry)
		return layer, nil
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return Layer{}, err
	}
	layer.addGeometry(g)
	return layer, nil
}

func (l *Layer) addGeometry(g *geojson.Geometry) {
	if g == nil {
		return
	}
	switch g.Type {
	case geojson.GeometryLineString:
		l.addLine(g.LineString)
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			l.addLine(line)
		}
	case geojson.GeometryPolygon:
		l.addPolygon(g.Polygon)
	case geojson.GeometryMultiPolygon:
		for _, polygon := range g.MultiPolygon {
			l.addPolygon(polygon)
		}
	case geojson.GeometryCollection:
		for _, child := range g.Geometries {
			l.addGeometry(child)
		}
	}
}

func (l *Layer) addLine(coords [][]float64) {
	if path := toPath(coords); len(path) >= 2 {
		l.Lines = append(l.Lines, path)
	}
}

func (l *Layer) addPolygon(rings [][][]float64) {
	if len(rings) == 0 {
		return
	}
	if path := toPath(rings[0]); len(path) >= 3 {
		l.Rings = append(l.Rings, path)
	}
}

func toPath(coords [][]float64) Path {
	path := make(Path, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		path = append(path, extent.Position{Lon: c[0], Lat: c[1]})
	}
	return path
}

// Within returns the paths of l that have at least one vertex inside box.
func (l Layer) Within(box extent.Box) Layer {
	out := Layer{Name: l.Name}
	for _, p := range l.Lines {
		if touches(p, box) {
			out.Lines = append(out.Lines, p)
		}
	}
	for _, p := range l.Rings {
		if touches(p, box) {
			out.Rings = append(out.Rings, p)
		}
	}
	return out
}

func touches(path Path, box extent.Box) bool {
	for _, p := range path {
		if box.Contains(p) {
			return true
		}
	}
	return false
}
