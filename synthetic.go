package demgrid

import (
	"context"
	"math"
)

// A Landmark is a rectangular area with a fixed elevation.
type Landmark struct {
	Name      string
	MinLat    float64
	MaxLat    float64
	MinLon    float64
	MaxLon    float64
	Elevation float64 // Meters.
}

// DefaultLandmarks are the landmarks used by SyntheticSource when none are
// given.
var DefaultLandmarks = []Landmark{
	{Name: "fuji", MinLat: 35.36, MaxLat: 35.37, MinLon: 138.72, MaxLon: 138.73, Elevation: 3776},
	{Name: "tokyo", MinLat: 35.68, MaxLat: 35.69, MinLon: 139.76, MaxLon: 139.77, Elevation: 3},
	{Name: "osaka", MinLat: 34.68, MaxLat: 34.69, MinLon: 135.52, MaxLon: 135.53, Elevation: 20},
}

// A SyntheticSource generates one sample at the center of every cell of
// Geometry, for testing downstream consumers without real data. Cells inside
// a landmark take the landmark's elevation, the rest a gentle slope rising
// from 5m at the origin.
type SyntheticSource struct {
	Geometry  Geometry
	Landmarks []Landmark
}

func (s *SyntheticSource) Name() string {
	return "synthetic"
}

func (s *SyntheticSource) unbuffered() {}

func (s *SyntheticSource) ReadSamples(ctx context.Context, yield func(Sample), skip func(int, error)) error {
	landmarks := s.Landmarks
	if landmarks == nil {
		landmarks = DefaultLandmarks
	}
	width, height := s.Geometry.Width(), s.Geometry.Height()
	for y := range height {
		if err := ctx.Err(); err != nil {
			return err
		}
	X:
		for x := range width {
			lat, lon := s.Geometry.CellCenter(Coord{X: x, Y: y})
			for _, landmark := range landmarks {
				if landmark.MinLat <= lat && lat <= landmark.MaxLat && landmark.MinLon <= lon && lon <= landmark.MaxLon {
					yield(Sample{Lat: lat, Lon: lon, Elevation: landmark.Elevation})
					continue X
				}
			}
			yield(Sample{
				Lat:       lat,
				Lon:       lon,
				Elevation: SyntheticElevation(x, y),
			})
		}
	}
	return nil
}

// SyntheticElevation returns the background elevation, in meters, of the
// cell at (x, y) generated by SyntheticSource.
func SyntheticElevation(x, y int) float64 {
	return math.Floor(500+0.01*float64(x)+0.02*float64(y)) / 100
}
