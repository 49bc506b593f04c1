package demgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidGeometry is returned when grid bounds or resolution cannot
// describe a non-empty grid.
var ErrInvalidGeometry = errors.New("invalid geometry")

// A Geometry describes the bounds and resolution of a grid. All values are
// in degrees.
type Geometry struct {
	MinLat   float64
	MaxLat   float64
	MinLon   float64
	MaxLon   float64
	GridSize float64
}

// NewGeometry returns a new Geometry, or an error wrapping
// ErrInvalidGeometry if the parameters do not describe a grid with at least
// one cell.
func NewGeometry(minLat, maxLat, minLon, maxLon, gridSize float64) (Geometry, error) {
	g := Geometry{
		MinLat:   minLat,
		MaxLat:   maxLat,
		MinLon:   minLon,
		MaxLon:   maxLon,
		GridSize: gridSize,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate returns an error wrapping ErrInvalidGeometry if g is not usable.
func (g Geometry) Validate() error {
	for _, value := range []float64{g.MinLat, g.MaxLat, g.MinLon, g.MaxLon, g.GridSize} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: non-finite value %v", ErrInvalidGeometry, value)
		}
	}
	switch {
	case g.GridSize <= 0:
		return fmt.Errorf("%w: grid size %v is not positive", ErrInvalidGeometry, g.GridSize)
	case g.MaxLat <= g.MinLat:
		return fmt.Errorf("%w: latitude range [%v, %v] is empty", ErrInvalidGeometry, g.MinLat, g.MaxLat)
	case g.MaxLon <= g.MinLon:
		return fmt.Errorf("%w: longitude range [%v, %v] is empty", ErrInvalidGeometry, g.MinLon, g.MaxLon)
	}
	width := math.Floor((g.MaxLon - g.MinLon) / g.GridSize)
	height := math.Floor((g.MaxLat - g.MinLat) / g.GridSize)
	switch {
	case width < 1 || height < 1:
		return fmt.Errorf("%w: %vx%v cells", ErrInvalidGeometry, width, height)
	case width > math.MaxInt32 || height > math.MaxInt32:
		return fmt.Errorf("%w: %vx%v cells exceeds header limits", ErrInvalidGeometry, width, height)
	case width*height > math.MaxInt32:
		return fmt.Errorf("%w: %vx%v cells is too many", ErrInvalidGeometry, width, height)
	}
	return nil
}

// Width returns the number of columns.
func (g Geometry) Width() int {
	return int(math.Floor((g.MaxLon - g.MinLon) / g.GridSize))
}

// Height returns the number of rows.
func (g Geometry) Height() int {
	return int(math.Floor((g.MaxLat - g.MinLat) / g.GridSize))
}

// Bound returns g's bounds with longitude as X and latitude as Y.
func (g Geometry) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.MinLon, g.MinLat},
		Max: orb.Point{g.MaxLon, g.MaxLat},
	}
}

// CellCoord returns the cell containing (lat, lon). It returns false if the
// point is outside g's bounds or falls past the last whole cell.
func (g Geometry) CellCoord(lat, lon float64) (Coord, bool) {
	if !g.Bound().Contains(orb.Point{lon, lat}) {
		return Coord{}, false
	}
	fx := math.Floor((lon - g.MinLon) / g.GridSize)
	fy := math.Floor((lat - g.MinLat) / g.GridSize)
	// Written so that NaNs, which orb.Bound.Contains accepts, fail.
	if !(0 <= fx && fx < float64(g.Width()) && 0 <= fy && fy < float64(g.Height())) {
		return Coord{}, false
	}
	return Coord{X: int(fx), Y: int(fy)}, true
}

// CellCenter returns the latitude and longitude of the center of the cell at
// coord.
func (g Geometry) CellCenter(coord Coord) (lat, lon float64) {
	lat = g.MinLat + (float64(coord.Y)+0.5)*g.GridSize
	lon = g.MinLon + (float64(coord.X)+0.5)*g.GridSize
	return lat, lon
}

// Header returns the header describing g.
func (g Geometry) Header() Header {
	return Header{
		Width:    int32(g.Width()),
		Height:   int32(g.Height()),
		MinLat:   g.MinLat,
		MaxLat:   g.MaxLat,
		MinLon:   g.MinLon,
		MaxLon:   g.MaxLon,
		GridSize: g.GridSize,
	}
}
