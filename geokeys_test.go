package demgrid

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

var testGeoKeyDirectory = []uint16{
	1, 1, 0, 5,
	1024, 0, 1, 2,
	1025, 0, 1, 1,
	1026, 34737, 7, 0,
	2048, 0, 1, 4326,
	2054, 0, 1, 9102,
}

func TestParseGeoKeys(t *testing.T) {
	actual, err := ParseGeoKeys(testGeoKeyDirectory, nil, []byte("WGS 84|\x00"))
	assert.NoError(t, err)
	assert.Equal(t, &ParsedGeoKeys{
		Params: map[GeoKey]int{
			GeoKeyGTModelType:  ModelTypeGeographic,
			GeoKeyGTRasterType: RasterPixelIsArea,
			GeoKeyGeodeticCRS:  4326,
			GeoKeyAngularUnits: AngularUnitDegree,
		},
		DoubleParams: map[GeoKey]float64{},
		ASCIIParams: map[GeoKey]string{
			GeoKeyGTCitation: "WGS 84|",
		},
	}, actual)

	pixelOffset, err := actual.pixelOffset()
	assert.NoError(t, err)
	assert.Equal(t, 0.5, pixelOffset)
}

func TestParseGeoKeysDoubleParams(t *testing.T) {
	directory := []uint16{
		1, 1, 1, 2,
		1024, 0, 1, 2,
		2057, 34736, 1, 1,
	}
	actual, err := ParseGeoKeys(directory, []float64{0, 6378137}, nil)
	assert.NoError(t, err)
	assert.Equal(t, map[GeoKey]float64{2057: 6378137}, actual.DoubleParams)
}

func TestParseGeoKeysErrors(t *testing.T) {
	for _, tc := range []struct {
		name         string
		directory    []uint16
		doubleParams []float64
		asciiParams  []byte
		expectedErr  error
	}{
		{
			name:        "empty",
			expectedErr: errParse,
		},
		{
			name:        "version",
			directory:   []uint16{2, 1, 0, 0},
			expectedErr: errParse,
		},
		{
			name:        "count",
			directory:   []uint16{1, 1, 0, 2, 1024, 0, 1, 2},
			expectedErr: errParse,
		},
		{
			name:        "short_count",
			directory:   []uint16{1, 1, 0, 1, 1024, 0, 2, 2},
			expectedErr: errParse,
		},
		{
			name:        "double_out_of_range",
			directory:   []uint16{1, 1, 0, 1, 2057, 34736, 1, 1},
			expectedErr: errParse,
		},
		{
			name:        "double_count",
			directory:   []uint16{1, 1, 0, 1, 2057, 34736, 2, 0},
			expectedErr: errors.ErrUnsupported,
		},
		{
			name:        "ascii_out_of_range",
			directory:   []uint16{1, 1, 0, 1, 1026, 34737, 8, 0},
			asciiParams: []byte("WGS 84|"),
			expectedErr: errParse,
		},
		{
			name:        "location",
			directory:   []uint16{1, 1, 0, 1, 1026, 1234, 1, 0},
			expectedErr: errors.ErrUnsupported,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGeoKeys(tc.directory, tc.doubleParams, tc.asciiParams)
			assert.IsError(t, err, tc.expectedErr)
		})
	}
}

func TestPixelOffset(t *testing.T) {
	for _, tc := range []struct {
		name        string
		params      map[GeoKey]int
		expected    float64
		expectedErr error
	}{
		{
			name: "area",
			params: map[GeoKey]int{
				GeoKeyGTModelType:  ModelTypeGeographic,
				GeoKeyGTRasterType: RasterPixelIsArea,
			},
			expected: 0.5,
		},
		{
			name: "default_raster_type",
			params: map[GeoKey]int{
				GeoKeyGTModelType: ModelTypeGeographic,
			},
			expected: 0.5,
		},
		{
			name: "point",
			params: map[GeoKey]int{
				GeoKeyGTModelType:  ModelTypeGeographic,
				GeoKeyGTRasterType: RasterPixelIsPoint,
				GeoKeyAngularUnits: AngularUnitDegree,
			},
			expected: 0,
		},
		{
			name: "projected",
			params: map[GeoKey]int{
				GeoKeyGTModelType:  ModelTypeProjected,
				GeoKeyProjectedCRS: 3035,
			},
			expectedErr: errors.ErrUnsupported,
		},
		{
			name: "radians",
			params: map[GeoKey]int{
				GeoKeyGTModelType:  ModelTypeGeographic,
				GeoKeyAngularUnits: 9101,
			},
			expectedErr: errors.ErrUnsupported,
		},
		{
			name: "unknown_raster_type",
			params: map[GeoKey]int{
				GeoKeyGTModelType:  ModelTypeGeographic,
				GeoKeyGTRasterType: 3,
			},
			expectedErr: errors.ErrUnsupported,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := (&ParsedGeoKeys{Params: tc.params}).pixelOffset()
			if tc.expectedErr != nil {
				assert.IsError(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
