package demgrid_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-demgrid"
)

func TestLookupElevation(t *testing.T) {
	lookup, err := demgrid.NewLookup(newScenarioGrid(t), demgrid.WithLookupCacheSize(2))
	assert.NoError(t, err)

	elevation, err := lookup.Elevation(t.Context(), 35.25, 139.25)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, elevation)

	elevation, err = lookup.Elevation(t.Context(), 35.9, 139.9)
	assert.NoError(t, err)
	assert.Equal(t, -5.5, elevation)

	elevation, err = lookup.Elevation(t.Context(), 35.75, 139.25)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(elevation))
	assert.Equal(t, 2, lookup.Len())

	for _, tc := range []struct {
		lat, lon float64
	}{
		{lat: 34.99, lon: 139.5},
		{lat: 35.5, lon: 140.01},
		{lat: 36, lon: 139.5},
		{lat: math.NaN(), lon: 139.5},
	} {
		_, err := lookup.Elevation(t.Context(), tc.lat, tc.lon)
		assert.IsError(t, err, demgrid.ErrOutOfBounds)
	}
}

func TestLookupInterpolatedElevation(t *testing.T) {
	grid := demgrid.NewGrid(newTestGeometry(t))
	grid.Set(35.25, 139.25, 10)
	grid.Set(35.25, 139.75, 20)
	grid.Set(35.75, 139.25, 30)
	grid.Set(35.75, 139.75, 40)
	lookup, err := demgrid.NewLookup(grid)
	assert.NoError(t, err)

	for _, tc := range []struct {
		lat, lon float64
		expected float64
	}{
		{lat: 35.5, lon: 139.5, expected: 25},
		{lat: 35.25, lon: 139.25, expected: 10},
		{lat: 35.75, lon: 139.75, expected: 40},
		{lat: 35.25, lon: 139.5, expected: 15},
		{lat: 35.5, lon: 139.25, expected: 20},
		{lat: 35.1, lon: 139.1, expected: 10},
	} {
		elevation, err := lookup.InterpolatedElevation(t.Context(), tc.lat, tc.lon)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, elevation)
	}
	assert.Equal(t, 4, lookup.Len())

	_, err = lookup.InterpolatedElevation(t.Context(), 37, 139.5)
	assert.IsError(t, err, demgrid.ErrOutOfBounds)
}

func TestNewLookupInvalidCacheSize(t *testing.T) {
	_, err := demgrid.NewLookup(newScenarioGrid(t), demgrid.WithLookupCacheSize(0))
	assert.Error(t, err)
}
