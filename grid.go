package demgrid

import (
	"context"
	"math"
	"slices"
)

// A Grid is a dense grid of elevations in centimeters, stored row-major with
// row 0 at the minimum latitude.
type Grid struct {
	geometry Geometry
	width    int
	height   int
	cells    []int16
}

// NewGrid returns a new Grid with every cell set to NoData. geometry must be
// valid, see NewGeometry.
func NewGrid(geometry Geometry) *Grid {
	width, height := geometry.Width(), geometry.Height()
	cells := make([]int16, width*height)
	for i := range cells {
		cells[i] = NoData
	}
	return &Grid{
		geometry: geometry,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// ElevationCentimeters returns elevation, in meters, rounded to the nearest
// centimeter and clamped to the int16 range. It returns false if elevation
// is not finite.
func ElevationCentimeters(elevation float64) (int16, bool) {
	if math.IsNaN(elevation) || math.IsInf(elevation, 0) {
		return 0, false
	}
	cm := math.Round(elevation * 100)
	switch {
	case cm < math.MinInt16:
		return math.MinInt16, true
	case cm > math.MaxInt16:
		return math.MaxInt16, true
	default:
		return int16(cm), true
	}
}

// Geometry returns g's geometry.
func (g *Grid) Geometry() Geometry {
	return g.geometry
}

// Width returns the number of columns in g.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows in g.
func (g *Grid) Height() int {
	return g.height
}

// Cells returns g's cells in row-major order. The caller must not modify
// the returned slice.
func (g *Grid) Cells() []int16 {
	return g.cells
}

// Set stores elevation, in meters, in the cell containing (lat, lon),
// replacing any previous value. It returns false, leaving g unchanged, if
// the point is outside g or elevation is not finite.
func (g *Grid) Set(lat, lon, elevation float64) bool {
	coord, ok := g.geometry.CellCoord(lat, lon)
	if !ok {
		return false
	}
	cm, ok := ElevationCentimeters(elevation)
	if !ok {
		return false
	}
	g.cells[coord.X+coord.Y*g.width] = cm
	return true
}

// Cell returns the value of the cell at coord. coord must be inside g.
func (g *Grid) Cell(coord Coord) int16 {
	return g.cells[coord.X+coord.Y*g.width]
}

// SetCell sets the value of the cell at coord. coord must be inside g.
func (g *Grid) SetCell(coord Coord, value int16) {
	g.cells[coord.X+coord.Y*g.width] = value
}

// Contains returns whether coord is inside g.
func (g *Grid) Contains(coord Coord) bool {
	return 0 <= coord.X && coord.X < g.width && 0 <= coord.Y && coord.Y < g.height
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{
		geometry: g.geometry,
		width:    g.width,
		height:   g.height,
		cells:    slices.Clone(g.cells),
	}
}

// Samples returns the elevations in meters at coords. Cells that are NoData
// or outside g are returned as NaN.
func (g *Grid) Samples(ctx context.Context, coords []Coord) ([]float64, error) {
	samples := make([]float64, len(coords))
	for i, coord := range coords {
		if !g.Contains(coord) {
			samples[i] = math.NaN()
			continue
		}
		switch value := g.Cell(coord); value {
		case NoData:
			samples[i] = math.NaN()
		default:
			samples[i] = float64(value) / 100
		}
	}
	return samples, nil
}
