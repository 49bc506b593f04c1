package demgrid

import (
	"context"
	"math"
)

// InterpolateBilinear returns the bilinear interpolation of raster at
// fractional cell coordinates coords, where integer coordinates are cell
// centers. Coordinates are clamped to [0, width-1]×[0, height-1]. If any of
// the four surrounding samples is missing then the result is NaN.
func InterpolateBilinear(ctx context.Context, raster Raster, width, height int, coords [][]float64) ([]float64, error) {
	type corner struct {
		x0, y0 int
		dx, dy float64
	}
	corners := make([]corner, len(coords))
	rasterCoords := make([]Coord, 4*len(coords))
	for i, coord := range coords {
		fx := clamp(coord[0], 0, float64(width-1))
		fy := clamp(coord[1], 0, float64(height-1))
		x0 := min(int(fx), max(width-2, 0))
		y0 := min(int(fy), max(height-2, 0))
		x1 := min(x0+1, width-1)
		y1 := min(y0+1, height-1)
		corners[i] = corner{
			x0: x0,
			y0: y0,
			dx: fx - float64(x0),
			dy: fy - float64(y0),
		}
		rasterCoords[4*i+0] = Coord{X: x0, Y: y0}
		rasterCoords[4*i+1] = Coord{X: x1, Y: y0}
		rasterCoords[4*i+2] = Coord{X: x0, Y: y1}
		rasterCoords[4*i+3] = Coord{X: x1, Y: y1}
	}
	samples, err := raster.Samples(ctx, rasterCoords)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(coords))
	for i, c := range corners {
		dx, dy := c.dx, c.dy
		result[i] = 0 +
			samples[4*i+0]*(1-dx)*(1-dy) +
			samples[4*i+1]*dx*(1-dy) +
			samples[4*i+2]*(1-dx)*dy +
			samples[4*i+3]*dx*dy
	}
	return result, nil
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(value, hi))
}
