package geodata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosurvey/internal/extent"
	"echosurvey/internal/geodata"
)

const coastline = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "oregon"},
     "geometry": {"type": "Polygon", "coordinates": [[[-124.5, 42.0], [-123.0, 42.0], [-123.0, 46.0], [-124.0, 46.0], [-124.5, 42.0]]]}},
    {"type": "Feature", "properties": {"depth": -200},
     "geometry": {"type": "MultiLineString", "coordinates": [[[-125.0, 43.0], [-125.1, 44.0]], [[-170.0, 10.0], [-171.0, 11.0]]]}}
  ]
}`

func TestLoadFeatureCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coast.geojson")
	require.NoError(t, os.WriteFile(path, []byte(coastline), 0o644))

	layer, err := geodata.Load(path)
	require.NoError(t, err)
	assert.Len(t, layer.Rings, 1)
	assert.Len(t, layer.Lines, 2)
	assert.Equal(t, extent.Position{Lon: -124.5, Lat: 42.0}, layer.Rings[0][0])

	inside := layer.Within(extent.Box{West: -126, East: -122, South: 41, North: 47})
	assert.Len(t, inside.Rings, 1)
	assert.Len(t, inside.Lines, 1)
}

func TestParseBareGeometry(t *testing.T) {
	layer, err := geodata.Parse([]byte(`{"type": "LineString", "coordinates": [[-124, 44], [-124.1, 44.2]]}`))
	require.NoError(t, err)
	assert.Len(t, layer.Lines, 1)
	assert.False(t, layer.Empty())
}

func TestLoadEmptyPathAndErrors(t *testing.T) {
	layer, err := geodata.Load("")
	require.NoError(t, err)
	assert.True(t, layer.Empty())

	_, err = geodata.Load(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)

	_, err = geodata.Parse([]byte(`{"type": "Nope"`))
	assert.Error(t, err)
}
