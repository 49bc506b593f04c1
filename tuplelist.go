package demgrid

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"strings"
)

// GMLNamespace is the namespace of tuple list elements.
const GMLNamespace = "http://www.opengis.net/gml/3.2"

// A TupleListSource reads samples from the gml:tupleList elements of an XML
// document. Each whitespace-separated tuple is a lat,lon,elevation[,...]
// row.
type TupleListSource struct {
	FS       fs.FS
	Filename string
}

func (s *TupleListSource) Name() string {
	return s.Filename
}

func (s *TupleListSource) ReadSamples(ctx context.Context, yield func(Sample), skip func(int, error)) error {
	file, err := s.FS.Open(s.Filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return readTupleLists(ctx, file, yield, skip)
}

func readTupleLists(ctx context.Context, r io.Reader, yield func(Sample), skip func(int, error)) error {
	decoder := xml.NewDecoder(r)
	row := 0
	for {
		token, err := decoder.Token()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		startElement, ok := token.(xml.StartElement)
		if !ok || startElement.Name.Space != GMLNamespace || startElement.Name.Local != "tupleList" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var tupleList string
		if err := decoder.DecodeElement(&tupleList, &startElement); err != nil {
			return err
		}
		for _, tuple := range splitTuples(tupleList) {
			row++
			sample, err := parseRow(tuple)
			if err != nil {
				skip(row, err)
				continue
			}
			yield(sample)
		}
	}
}

// splitTuples splits s into tuples. Tuples are separated by line breaks or
// other whitespace, and their values by commas, which may themselves be
// surrounded by spaces.
func splitTuples(s string) []string {
	var tuples []string
	for line := range strings.Lines(s) {
		lineStart := len(tuples)
		for _, field := range strings.Fields(line) {
			if n := len(tuples); n > lineStart && (strings.HasSuffix(tuples[n-1], ",") || strings.HasPrefix(field, ",")) {
				tuples[n-1] += field
				continue
			}
			tuples = append(tuples, field)
		}
	}
	return tuples
}
