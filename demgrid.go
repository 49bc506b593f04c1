// Package demgrid builds dense, fixed-resolution elevation grids from sparse
// latitude, longitude, and elevation samples.
package demgrid

import "context"

// NoData is the cell value for cells that have not received a sample.
//
// It is also the encoding of an elevation of exactly -99.99m. The two are
// indistinguishable on disk.
const NoData int16 = -9999

// A Coord is a cell coordinate.
type Coord struct {
	X int // Column, increasing with longitude.
	Y int // Row, increasing with latitude.
}

// A Sample is a single elevation measurement.
type Sample struct {
	Lat       float64
	Lon       float64
	Elevation float64 // Meters.
}

// A Raster returns elevations in meters at cell coordinates. Missing samples
// are represented by NaNs.
type Raster interface {
	Samples(ctx context.Context, coords []Coord) ([]float64, error)
}
