package demgrid_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-demgrid"
)

func TestSyntheticSource(t *testing.T) {
	geometry, err := demgrid.NewGeometry(35.6, 35.8, 139.7, 139.9, 0.01)
	assert.NoError(t, err)
	grid := demgrid.NewGrid(geometry)

	result, err := demgrid.Ingest(t.Context(), grid, &demgrid.SyntheticSource{Geometry: geometry})
	assert.NoError(t, err)
	cellCount := grid.Width() * grid.Height()
	assert.Equal(t, demgrid.IngestResult{
		Sources: 1,
		Samples: cellCount,
		Stored:  cellCount,
	}, result)

	stats := grid.Stats()
	assert.Equal(t, cellCount, stats.ValidPoints)
	assert.Equal(t, 0, stats.MissingPoints)

	coord, ok := geometry.CellCoord(35.685, 139.765)
	assert.True(t, ok)
	assert.Equal(t, int16(300), grid.Cell(coord))
	assert.Equal(t, int16(500), grid.Cell(demgrid.Coord{X: 0, Y: 0}))
}

func TestSyntheticSourceLandmarkClamped(t *testing.T) {
	geometry, err := demgrid.NewGeometry(35.3, 35.4, 138.7, 138.8, 0.01)
	assert.NoError(t, err)
	grid := demgrid.NewGrid(geometry)

	_, err = demgrid.Ingest(t.Context(), grid, &demgrid.SyntheticSource{Geometry: geometry})
	assert.NoError(t, err)
	coord, ok := geometry.CellCoord(35.365, 138.725)
	assert.True(t, ok)
	assert.Equal(t, int16(32767), grid.Cell(coord))
}

func TestSyntheticSourceCustomLandmarks(t *testing.T) {
	geometry := newTestGeometry(t)
	grid := demgrid.NewGrid(geometry)
	source := &demgrid.SyntheticSource{
		Geometry: geometry,
		Landmarks: []demgrid.Landmark{
			{Name: "pit", MinLat: 35.5, MaxLat: 36, MinLon: 139.5, MaxLon: 140, Elevation: -12.34},
		},
	}
	_, err := demgrid.Ingest(t.Context(), grid, source)
	assert.NoError(t, err)
	assert.Equal(t, []int16{500, 500, 500, -1234}, grid.Cells())
}

func TestSyntheticElevation(t *testing.T) {
	for _, tc := range []struct {
		x, y     int
		expected float64
	}{
		{x: 0, y: 0, expected: 5},
		{x: 99, y: 0, expected: 5},
		{x: 100, y: 0, expected: 5.01},
		{x: 0, y: 50, expected: 5.01},
		{x: 100, y: 50, expected: 5.02},
	} {
		assert.Equal(t, tc.expected, demgrid.SyntheticElevation(tc.x, tc.y))
	}
}
