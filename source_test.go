package demgrid_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-demgrid"
)

func TestIngestAll(t *testing.T) {
	fsys := fstest.MapFS{
		"a.xml": &fstest.MapFile{
			Data: []byte(`<Dataset xmlns:gml="http://www.opengis.net/gml/3.2"><gml:tupleList>35.25,139.25,10.0</gml:tupleList></Dataset>`),
		},
		"b.xml": &fstest.MapFile{
			Data: []byte(`<Dataset xmlns:gml="http://www.opengis.net/gml/3.2"><gml:tupleList>35.75,139.75,20.0</gml:tupleList>`),
		},
		"c.csv": &fstest.MapFile{
			Data: []byte("35.25,139.25,30.0\n35.75,139.25,bad\n10,10,10\n"),
		},
	}
	sources := []demgrid.Source{
		&demgrid.TupleListSource{FS: fsys, Filename: "a.xml"},
		&demgrid.TupleListSource{FS: fsys, Filename: "b.xml"},
		&demgrid.DelimitedTextSource{FS: fsys, Filename: "missing.csv"},
		&demgrid.DelimitedTextSource{FS: fsys, Filename: "c.csv"},
	}

	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	grid := demgrid.NewGrid(newTestGeometry(t))
	result, err := demgrid.IngestAll(t.Context(), grid, sources, demgrid.WithLogger(logger))
	assert.NoError(t, err)
	assert.Equal(t, demgrid.IngestResult{
		Sources:       4,
		FailedSources: 2,
		Samples:       3,
		Stored:        2,
		OutOfBounds:   1,
		Malformed:     1,
	}, result)

	// c.csv was ingested after a.xml so its value wins.
	assert.Equal(t, []int16{3000, demgrid.NoData, demgrid.NoData, demgrid.NoData}, grid.Cells())

	logs := logBuffer.String()
	assert.Contains(t, logs, `level=ERROR msg="skipping source" source=b.xml`)
	assert.Contains(t, logs, `level=ERROR msg="skipping source" source=missing.csv`)
	assert.Contains(t, logs, `level=DEBUG msg="skipping row" source=c.csv row=2`)
	assert.Contains(t, logs, `level=INFO msg="processed source" source=a.xml`)
}

func TestIngestAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	geometry := newTestGeometry(t)
	grid := demgrid.NewGrid(geometry)
	_, err := demgrid.IngestAll(ctx, grid, []demgrid.Source{
		&demgrid.SyntheticSource{Geometry: geometry},
	})
	assert.IsError(t, err, context.Canceled)
	assert.Equal(t, 0, grid.Stats().ValidPoints)
}
