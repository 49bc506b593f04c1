package demgrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseRow parses a comma-separated lat,lon,elevation[,...] row. Fields after
// the third are ignored.
func parseRow(row string) (Sample, error) {
	fields := strings.SplitN(row, ",", 4)
	if len(fields) < 3 {
		return Sample{}, fmt.Errorf("%w: %d fields, expected at least 3", errParse, len(fields))
	}
	var values [3]float64
	for i := range values {
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: field %d: %w", errParse, i+1, err)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Sample{}, fmt.Errorf("%w: field %d: non-finite value", errParse, i+1)
		}
		values[i] = value
	}
	return Sample{
		Lat:       values[0],
		Lon:       values[1],
		Elevation: values[2],
	}, nil
}
