package demgrid

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrOutOfBounds is returned when a coordinate is outside a grid.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// A Lookup returns elevations from a Grid by latitude and longitude,
// caching the results for recently requested cells.
type Lookup struct {
	grid      *Grid
	cacheSize int
	cache     *lru.Cache[Coord, float64]
}

// A LookupOption sets an option on a Lookup.
type LookupOption func(*Lookup)

// WithLookupCacheSize sets the number of cells cached.
func WithLookupCacheSize(cacheSize int) LookupOption {
	return func(l *Lookup) {
		l.cacheSize = cacheSize
	}
}

// NewLookup returns a new Lookup for grid. grid must not be modified while
// the Lookup is in use.
func NewLookup(grid *Grid, options ...LookupOption) (*Lookup, error) {
	l := &Lookup{
		grid:      grid,
		cacheSize: 4096,
	}
	for _, option := range options {
		option(l)
	}

	var err error
	l.cache, err = lru.New[Coord, float64](l.cacheSize)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Elevation returns the elevation in meters of the cell containing (lat,
// lon). Cells without data return NaN.
func (l *Lookup) Elevation(ctx context.Context, lat, lon float64) (float64, error) {
	coord, ok := l.grid.geometry.CellCoord(lat, lon)
	if !ok {
		return 0, ErrOutOfBounds
	}
	samples, err := l.Samples(ctx, []Coord{coord})
	if err != nil {
		return 0, err
	}
	return samples[0], nil
}

// InterpolatedElevation returns the elevation in meters at (lat, lon),
// bilinearly interpolated between the centers of the surrounding cells.
func (l *Lookup) InterpolatedElevation(ctx context.Context, lat, lon float64) (float64, error) {
	if _, ok := l.grid.geometry.CellCoord(lat, lon); !ok {
		return 0, ErrOutOfBounds
	}
	g := l.grid.geometry
	coords := [][]float64{{
		(lon-g.MinLon)/g.GridSize - 0.5,
		(lat-g.MinLat)/g.GridSize - 0.5,
	}}
	elevations, err := InterpolateBilinear(ctx, l, l.grid.width, l.grid.height, coords)
	if err != nil {
		return 0, err
	}
	return elevations[0], nil
}

// Samples implements Raster using l's cache.
func (l *Lookup) Samples(ctx context.Context, coords []Coord) ([]float64, error) {
	samples := make([]float64, len(coords))
	var missCoords []Coord
	var missIndexes []int
	for i, coord := range coords {
		if sample, ok := l.cache.Get(coord); ok {
			lookupCacheHits.Inc()
			samples[i] = sample
			continue
		}
		lookupCacheMisses.Inc()
		missCoords = append(missCoords, coord)
		missIndexes = append(missIndexes, i)
	}
	if len(missCoords) == 0 {
		return samples, nil
	}
	missSamples, err := l.grid.Samples(ctx, missCoords)
	if err != nil {
		return nil, err
	}
	for j, i := range missIndexes {
		samples[i] = missSamples[j]
		if l.grid.Contains(missCoords[j]) {
			l.cache.Add(missCoords[j], missSamples[j])
		}
	}
	return samples, nil
}

// Len returns the number of cached cells.
func (l *Lookup) Len() int {
	return l.cache.Len()
}

var _ Raster = (*Lookup)(nil)
