package demgrid_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-demgrid"
)

func TestDelimitedTextSource(t *testing.T) {
	source := &demgrid.DelimitedTextSource{
		FS: fstest.MapFS{
			"points.csv": &fstest.MapFile{
				Data: []byte("" +
					"# lat,lon,elevation\n" +
					"\n" +
					"35.25,139.25,10.0\n" +
					"  35.99 , 139.99 , -5.5 , survey\n" +
					"35.75,139.25\n" +
					"35.75,139.25,NaN\n" +
					"35.75,east,1\n" +
					"   # indented comment\n" +
					"35.75,139.75,1000\n",
				),
			},
		},
		Filename: "points.csv",
	}
	assert.Equal(t, "points.csv", source.Name())

	samples, skippedRows := collectSamples(t, source)
	assert.Equal(t, []demgrid.Sample{
		{Lat: 35.25, Lon: 139.25, Elevation: 10},
		{Lat: 35.99, Lon: 139.99, Elevation: -5.5},
		{Lat: 35.75, Lon: 139.75, Elevation: 1000},
	}, samples)
	assert.Equal(t, []int{5, 6, 7}, skippedRows)

	grid := demgrid.NewGrid(newTestGeometry(t))
	result, err := demgrid.Ingest(t.Context(), grid, source)
	assert.NoError(t, err)
	assert.Equal(t, demgrid.IngestResult{
		Sources:   1,
		Samples:   3,
		Stored:    3,
		Malformed: 3,
	}, result)
	assert.Equal(t, []int16{1000, demgrid.NoData, demgrid.NoData, 32767}, grid.Cells())
}

func TestDelimitedTextSourceMissingFile(t *testing.T) {
	source := &demgrid.DelimitedTextSource{
		FS:       fstest.MapFS{},
		Filename: "missing.csv",
	}
	grid := demgrid.NewGrid(newTestGeometry(t))
	result, err := demgrid.Ingest(t.Context(), grid, source)
	assert.Error(t, err)
	assert.Equal(t, demgrid.IngestResult{Sources: 1, FailedSources: 1}, result)
}

func TestDelimitedTextSourceLongLines(t *testing.T) {
	source := &demgrid.DelimitedTextSource{
		FS: fstest.MapFS{
			"points.csv": &fstest.MapFile{
				Data: []byte("" +
					"35.25,139.25,10.0\n" +
					strings.Repeat("9", 2<<20) + "\n" +
					"35.75,139.75,2.5," + strings.Repeat("x", 2<<20) + "\n" +
					"35.75,139.25,1.5",
				),
			},
		},
		Filename: "points.csv",
	}

	samples, skippedRows := collectSamples(t, source)
	assert.Equal(t, []demgrid.Sample{
		{Lat: 35.25, Lon: 139.25, Elevation: 10},
		{Lat: 35.75, Lon: 139.75, Elevation: 2.5},
		{Lat: 35.75, Lon: 139.25, Elevation: 1.5},
	}, samples)
	assert.Equal(t, []int{2}, skippedRows)

	grid := demgrid.NewGrid(newTestGeometry(t))
	result, err := demgrid.Ingest(t.Context(), grid, source)
	assert.NoError(t, err)
	assert.Equal(t, demgrid.IngestResult{
		Sources:   1,
		Samples:   3,
		Stored:    3,
		Malformed: 1,
	}, result)
	assert.Equal(t, []int16{1000, demgrid.NoData, 150, 250}, grid.Cells())
}
