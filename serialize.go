package demgrid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// HeaderSize is the size of an encoded Header in bytes.
const HeaderSize = 48

var errShortRead = errors.New("short read")

// A Header describes the layout of a grid file. It is encoded as
// little-endian values in field order.
type Header struct {
	Width    int32
	Height   int32
	MinLat   float64
	MaxLat   float64
	MinLon   float64
	MaxLon   float64
	GridSize float64
}

// Geometry returns the Geometry described by h. It returns an error if h is
// not self-consistent.
func (h Header) Geometry() (Geometry, error) {
	geometry, err := NewGeometry(h.MinLat, h.MaxLat, h.MinLon, h.MaxLon, h.GridSize)
	if err != nil {
		return Geometry{}, err
	}
	if width, height := geometry.Width(), geometry.Height(); int(h.Width) != width || int(h.Height) != height {
		return Geometry{}, fmt.Errorf("%w: header size %dx%d does not match bounds size %dx%d", ErrInvalidGeometry, h.Width, h.Height, width, height)
	}
	return geometry, nil
}

// DataSize returns the size in bytes of the grid file described by h.
func (h Header) DataSize() int64 {
	return 2 * int64(h.Width) * int64(h.Height)
}

// WriteHeader writes header to w.
func WriteHeader(w io.Writer, header Header) error {
	return binary.Write(w, binary.LittleEndian, &header)
}

// ReadHeader reads a Header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return Header{}, err
	}
	return header, nil
}

// WriteGrid writes grid's cells to w as little-endian int16s in row-major
// order, starting with the minimum latitude row.
func WriteGrid(w io.Writer, grid *Grid) error {
	buf := make([]byte, 2*grid.width)
	for y := range grid.height {
		row := grid.cells[y*grid.width : (y+1)*grid.width]
		for x, value := range row {
			binary.LittleEndian.PutUint16(buf[2*x:], uint16(value))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadGrid reads a grid described by header from r.
func ReadGrid(r io.Reader, header Header) (*Grid, error) {
	geometry, err := header.Geometry()
	if err != nil {
		return nil, err
	}
	grid := NewGrid(geometry)
	buf := make([]byte, 2*grid.width)
	for y := range grid.height {
		switch n, err := io.ReadFull(r, buf); {
		case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
			return nil, fmt.Errorf("row %d: %w", y, errShortRead)
		case err != nil:
			return nil, err
		case n != len(buf):
			return nil, errShortRead
		}
		row := grid.cells[y*grid.width : (y+1)*grid.width]
		for x := range row {
			row[x] = int16(binary.LittleEndian.Uint16(buf[2*x:]))
		}
	}
	return grid, nil
}

// SaveBinary writes grid's cells to the file at path.
func SaveBinary(path string, grid *Grid) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteGrid(w, grid)
	})
}

// SaveHeader writes the header for geometry to the file at path.
func SaveHeader(path string, geometry Geometry) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteHeader(w, geometry.Header())
	})
}

// WriteOutputs writes grid's cells to binaryPath and its header to
// headerPath.
func WriteOutputs(grid *Grid, binaryPath, headerPath string) error {
	if err := SaveBinary(binaryPath, grid); err != nil {
		return err
	}
	return SaveHeader(headerPath, grid.geometry)
}

// LoadGrid reads a grid from the files at binaryPath and headerPath.
func LoadGrid(binaryPath, headerPath string) (*Grid, error) {
	headerData, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, err
	}
	if len(headerData) != HeaderSize {
		return nil, fmt.Errorf("%s: header size mismatch: expected %d bytes, got %d bytes", headerPath, HeaderSize, len(headerData))
	}
	header, err := ReadHeader(bytes.NewReader(headerData))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", headerPath, err)
	}
	if _, err := header.Geometry(); err != nil {
		return nil, fmt.Errorf("%s: %w", headerPath, err)
	}

	file, err := os.Open(binaryPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if expectedSize := header.DataSize(); fileInfo.Size() != expectedSize {
		return nil, fmt.Errorf("%s: data file size mismatch: expected %d bytes, got %d bytes", binaryPath, expectedSize, fileInfo.Size())
	}

	grid, err := ReadGrid(bufio.NewReaderSize(file, 1<<20), header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", binaryPath, err)
	}
	return grid, nil
}

// writeFileAtomic writes a file at path by calling write with a buffered
// temporary file in the same directory, and renames it to path on success.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return err
	}
	file, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	if err := file.Chmod(0o644); err != nil {
		return err
	}

	w := bufio.NewWriterSize(file, 1<<20)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), path)
}
