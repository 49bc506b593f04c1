package demgrid

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
)

// A DelimitedTextSource reads samples from a text file with one
// lat,lon,elevation[,...] record per line. Blank lines and lines starting
// with # are ignored.
type DelimitedTextSource struct {
	FS       fs.FS
	Filename string
}

func (s *DelimitedTextSource) Name() string {
	return s.Filename
}

func (s *DelimitedTextSource) ReadSamples(ctx context.Context, yield func(Sample), skip func(int, error)) error {
	file, err := s.FS.Open(s.Filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return readDelimitedText(ctx, file, yield, skip)
}

func readDelimitedText(ctx context.Context, r io.Reader, yield func(Sample), skip func(int, error)) error {
	reader := bufio.NewReaderSize(r, 1<<16)
	lineNumber := 0
	for {
		line, err := reader.ReadString('\n')
		switch {
		case errors.Is(err, io.EOF):
			if line == "" {
				return nil
			}
		case err != nil:
			return err
		}
		lineNumber++
		if lineNumber%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			if sample, err := parseRow(line); err != nil {
				skip(lineNumber, err)
			} else {
				yield(sample)
			}
		}
		if err != nil {
			return nil
		}
	}
}
