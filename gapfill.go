package demgrid

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyGrid is returned by FillGaps when the grid has no cells with data.
var ErrEmptyGrid = errors.New("grid has no data")

// A FillGapsOption sets an option on FillGaps.
type FillGapsOption func(*fillGapsOptions)

type fillGapsOptions struct {
	concurrency int
}

// WithConcurrency sets the maximum number of goroutines used by FillGaps.
// The default is one, which fills the grid synchronously.
func WithConcurrency(concurrency int) FillGapsOption {
	return func(o *fillGapsOptions) {
		o.concurrency = max(concurrency, 1)
	}
}

// FillGaps replaces every NoData cell in grid with the value of the nearest
// cell that is not NoData, measured by Euclidean distance between cell
// coordinates. It returns the number of cells filled.
//
// If grid has no data then FillGaps returns ErrEmptyGrid and grid is not
// modified. If ctx is done before FillGaps completes then grid may be
// partially filled.
//
// FillGaps computes an exact feature transform in two passes. The first
// finds, for every cell, the nearest row with data in the same column. The
// second finds, for every row, the lower envelope of the parabolas
// (x-x')²+dy(x')² as described in Felzenszwalb and Huttenlocher, "Distance
// Transforms of Sampled Functions". It uses time and extra memory
// proportional to the number of cells.
func FillGaps(ctx context.Context, grid *Grid, options ...FillGapsOption) (int, error) {
	o := &fillGapsOptions{
		concurrency: 1,
	}
	for _, option := range options {
		option(o)
	}

	width, height := grid.width, grid.height
	cells := grid.cells

	missing := 0
	for _, value := range cells {
		if value == NoData {
			missing++
		}
	}
	switch missing {
	case 0:
		return 0, nil
	case len(cells):
		return 0, ErrEmptyGrid
	}

	// nearestRows[x+y*width] is the row of the nearest cell with data in
	// column x, or -1 if column x has no data.
	nearestRows := make([]int32, len(cells))

	if err := forEachChunk(ctx, o.concurrency, width, func(start, end int) {
		for x := start; x < end; x++ {
			fillColumn(cells, nearestRows, width, height, x)
		}
	}); err != nil {
		return 0, err
	}

	if err := forEachChunk(ctx, o.concurrency, height, func(start, end int) {
		envelope := newLowerEnvelope(width)
		for y := start; y < end; y++ {
			fillRow(cells, nearestRows, width, y, envelope)
		}
	}); err != nil {
		return 0, err
	}

	cellsFilled.Add(float64(missing))
	return missing, nil
}

// fillColumn sets nearestRows for column x.
func fillColumn(cells []int16, nearestRows []int32, width, height, x int) {
	// Downward sweep.
	nearest := int32(-1)
	for y := range height {
		i := x + y*width
		if cells[i] != NoData {
			nearest = int32(y)
		}
		nearestRows[i] = nearest
	}

	// Upward sweep. Ties keep the lower row.
	nearest = -1
	for y := height - 1; y >= 0; y-- {
		i := x + y*width
		if cells[i] != NoData {
			nearest = int32(y)
			continue
		}
		if nearest < 0 {
			continue
		}
		if current := nearestRows[i]; current < 0 || int(nearest)-y < y-int(current) {
			nearestRows[i] = nearest
		}
	}
}

// A lowerEnvelope is scratch space for the lower envelope of a row's
// parabolas.
type lowerEnvelope struct {
	vertices   []int     // Columns of the parabolas in the envelope.
	boundaries []float64 // boundaries[k] is where parabola k starts to be lowest.
}

func newLowerEnvelope(width int) *lowerEnvelope {
	return &lowerEnvelope{
		vertices:   make([]int, width),
		boundaries: make([]float64, width+1),
	}
}

// fillRow fills the NoData cells in row y from the nearest cell with data.
// Cells with data are only read, so rows may be filled concurrently.
func fillRow(cells []int16, nearestRows []int32, width, y int, e *lowerEnvelope) {
	row := nearestRows[y*width : (y+1)*width]

	// f returns the squared vertical distance to the nearest cell with data
	// in column q, which must have data.
	f := func(q int) float64 {
		dy := float64(int(row[q]) - y)
		return dy * dy
	}

	// Build the lower envelope from the columns that have data.
	k := -1
	for q := range width {
		if row[q] < 0 {
			continue
		}
		if k < 0 {
			k = 0
			e.vertices[0] = q
			e.boundaries[0] = math.Inf(-1)
			e.boundaries[1] = math.Inf(1)
			continue
		}
		fq := f(q) + float64(q*q)
		var s float64
		for {
			v := e.vertices[k]
			s = (fq - (f(v) + float64(v*v))) / float64(2*(q-v))
			if s > e.boundaries[k] {
				break
			}
			k-- // boundaries[0] is -Inf so k never goes negative.
		}
		k++
		e.vertices[k] = q
		e.boundaries[k] = s
		e.boundaries[k+1] = math.Inf(1)
	}

	// Read off the nearest column for every cell.
	k = 0
	for x := range width {
		for e.boundaries[k+1] < float64(x) {
			k++
		}
		i := x + y*width
		if cells[i] != NoData {
			continue
		}
		v := e.vertices[k]
		cells[i] = cells[v+int(row[v])*width]
	}
}

// chunkSize is the number of rows or columns processed between checks of
// the context.
const chunkSize = 64

// forEachChunk calls f for consecutive chunks [start, end) covering [0, n)
// using up to concurrency goroutines. It stops early if ctx is done.
func forEachChunk(ctx context.Context, concurrency, n int, f func(start, end int)) error {
	if concurrency <= 1 {
		for start := 0; start < n; start += chunkSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			f(start, min(start+chunkSize, n))
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < n; start += chunkSize {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f(start, min(start+chunkSize, n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
