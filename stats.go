package demgrid

import "log/slog"

// Stats summarizes the contents of a Grid.
type Stats struct {
	TotalPoints   int
	ValidPoints   int
	MissingPoints int
	Coverage      float64 // Percent of cells that are not NoData.

	// MinElevation, MaxElevation, and MeanElevation are in meters and are
	// only meaningful if HasElevations returns true.
	MinElevation  float64
	MaxElevation  float64
	MeanElevation float64
}

// Stats returns statistics about g.
func (g *Grid) Stats() Stats {
	stats := Stats{
		TotalPoints: len(g.cells),
	}
	var sum int64
	minCM, maxCM := int16(0), int16(0)
	for _, value := range g.cells {
		if value == NoData {
			continue
		}
		if stats.ValidPoints == 0 {
			minCM, maxCM = value, value
		} else {
			minCM = min(minCM, value)
			maxCM = max(maxCM, value)
		}
		sum += int64(value)
		stats.ValidPoints++
	}
	stats.MissingPoints = stats.TotalPoints - stats.ValidPoints
	if stats.ValidPoints == 0 {
		return stats
	}
	stats.Coverage = float64(stats.ValidPoints) / float64(stats.TotalPoints) * 100
	stats.MinElevation = float64(minCM) / 100
	stats.MaxElevation = float64(maxCM) / 100
	stats.MeanElevation = float64(sum) / float64(stats.ValidPoints) / 100
	return stats
}

// HasElevations returns whether s has elevation statistics.
func (s Stats) HasElevations() bool {
	return s.ValidPoints > 0
}

// LogValue implements log/slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("total_points", s.TotalPoints),
		slog.Int("valid_points", s.ValidPoints),
		slog.Int("missing_points", s.MissingPoints),
		slog.Float64("coverage", s.Coverage),
	}
	if s.HasElevations() {
		attrs = append(attrs,
			slog.Float64("min_elevation", s.MinElevation),
			slog.Float64("max_elevation", s.MaxElevation),
			slog.Float64("mean_elevation", s.MeanElevation),
		)
	}
	return slog.GroupValue(attrs...)
}
