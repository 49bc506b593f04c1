package demgrid

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	"golang.org/x/image/tiff/lzw"
)

// TIFF compression schemes.
const (
	compressionNone = 1
	compressionLZW  = 5
)

// A GeoTIFFSource reads one sample per pixel from a tiled, single band,
// float32 GeoTIFF in a geographic coordinate system. Pixels equal to the
// GDAL no data value, or NaN, are skipped.
type GeoTIFFSource struct {
	FS       fs.FS
	Filename string
}

type readAtReadSeeker interface {
	io.ReaderAt
	io.ReadSeeker
}

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal an
// IFD.
type geoTIFFIFD struct {
	ImageWidth                uint32    `tiff:"field,tag=256"`
	ImageLength               uint32    `tiff:"field,tag=257"`
	BitsPerSample             uint16    `tiff:"field,tag=258"`
	Compression               uint16    `tiff:"field,tag=259"`
	PhotometricInterpretation uint16    `tiff:"field,tag=262"`
	SamplesPerPixel           uint16    `tiff:"field,tag=277"`
	PlanarConfiguration       uint16    `tiff:"field,tag=284"`
	Predictor                 uint16    `tiff:"field,tag=317"`
	TileWidth                 uint16    `tiff:"field,tag=322"`
	TileLength                uint16    `tiff:"field,tag=323"`
	TileOffsets               []uint64  `tiff:"field,tag=324"`
	TileByteCounts            []uint64  `tiff:"field,tag=325"`
	SampleFormat              uint16    `tiff:"field,tag=339"`
	ModelPixelScaleTag        []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag          []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag        []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag        []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag         string    `tiff:"field,tag=34737"`
	GDALNoData                string    `tiff:"field,tag=42113"`
}

// A geoTIFFLayout is the validated layout of a GeoTIFF's pixels.
type geoTIFFLayout struct {
	imageWidth     int
	imageLength    int
	tileWidth      int
	tileLength     int
	tilesAcross    int
	tilesDown      int
	tileOffsets    []uint64
	tileByteCounts []uint64
	compression    int
	noData         float32
	hasNoData      bool
	originLon      float64 // Longitude of the center of pixel (0, 0).
	originLat      float64 // Latitude of the center of pixel (0, 0).
	scaleLon       float64 // Degrees per column.
	scaleLat       float64 // Degrees per row, southwards.
}

func (s *GeoTIFFSource) Name() string {
	return s.Filename
}

func (s *GeoTIFFSource) ReadSamples(ctx context.Context, yield func(Sample), skip func(int, error)) error {
	file, err := s.FS.Open(s.Filename)
	if err != nil {
		return err
	}
	defer file.Close()

	readAtSeeker, ok := file.(readAtReadSeeker)
	if !ok {
		return errors.ErrUnsupported
	}

	tiffTIFF, err := tiff.Parse(readAtSeeker, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return err
	}
	if len(tiffTIFF.IFDs()) != 1 {
		return fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}
	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return err
	}
	layout, err := newGeoTIFFLayout(&ifd)
	if err != nil {
		return err
	}

	tileByteCountUncompressed := 4 * layout.tileWidth * layout.tileLength
	for tileRow := range layout.tilesDown {
		if err := ctx.Err(); err != nil {
			return err
		}
		for tileColumn := range layout.tilesAcross {
			tileIndex := tileColumn + tileRow*layout.tilesAcross
			compressedData := make([]byte, layout.tileByteCounts[tileIndex])
			switch n, err := readAtSeeker.ReadAt(compressedData, int64(layout.tileOffsets[tileIndex])); {
			case n == len(compressedData):
			case err != nil:
				return err
			default:
				return errShortRead
			}
			tileData, err := layout.decompress(compressedData, tileByteCountUncompressed)
			if err != nil {
				return fmt.Errorf("tile %d: %w", tileIndex, err)
			}
			layout.yieldTile(TileCoord{C: tileColumn, R: tileRow}, tileData, yield)
		}
	}
	return nil
}

// A TileCoord is a tile coordinate.
type TileCoord struct {
	C int // Column.
	R int // Row.
}

func newGeoTIFFLayout(ifd *geoTIFFIFD) (*geoTIFFLayout, error) {
	if ifd.BitsPerSample != 32 ||
		(ifd.Compression != compressionNone && ifd.Compression != compressionLZW) ||
		ifd.SamplesPerPixel != 1 ||
		(ifd.PlanarConfiguration != 0 && ifd.PlanarConfiguration != 1) ||
		(ifd.Predictor != 0 && ifd.Predictor != 1) ||
		ifd.SampleFormat != 3 ||
		ifd.TileWidth == 0 || ifd.TileLength == 0 ||
		len(ifd.ModelPixelScaleTag) != 3 ||
		len(ifd.ModelTiepointTag) != 6 {
		return nil, errors.ErrUnsupported
	}

	geoKeys, err := ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
	if err != nil {
		return nil, err
	}
	pixelOffset, err := geoKeys.pixelOffset()
	if err != nil {
		return nil, err
	}

	l := &geoTIFFLayout{
		imageWidth:     int(ifd.ImageWidth),
		imageLength:    int(ifd.ImageLength),
		tileWidth:      int(ifd.TileWidth),
		tileLength:     int(ifd.TileLength),
		tileOffsets:    ifd.TileOffsets,
		tileByteCounts: ifd.TileByteCounts,
		compression:    int(ifd.Compression),
	}
	l.tilesAcross = (l.imageWidth + l.tileWidth - 1) / l.tileWidth
	l.tilesDown = (l.imageLength + l.tileLength - 1) / l.tileLength
	tilesPerImage := l.tilesAcross * l.tilesDown
	if len(l.tileByteCounts) != tilesPerImage || len(l.tileOffsets) != tilesPerImage {
		return nil, errors.New("incorrect number of tile byte counts or offsets")
	}

	if noData := strings.TrimSpace(strings.TrimRight(ifd.GDALNoData, "\x00")); noData != "" {
		value, err := strconv.ParseFloat(noData, 32)
		if err != nil {
			return nil, fmt.Errorf("GDAL no data %q: %w", noData, err)
		}
		l.noData = float32(value)
		l.hasNoData = true
	}

	// The tie point maps raster position (i, j) to model position (x, y).
	i, j := ifd.ModelTiepointTag[0], ifd.ModelTiepointTag[1]
	x, y := ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4]
	l.scaleLon, l.scaleLat = ifd.ModelPixelScaleTag[0], ifd.ModelPixelScaleTag[1]
	if l.scaleLon <= 0 || l.scaleLat <= 0 {
		return nil, errors.ErrUnsupported
	}
	l.originLon = x + (pixelOffset-i)*l.scaleLon
	l.originLat = y - (pixelOffset-j)*l.scaleLat
	return l, nil
}

// decompress returns the uncompressed data of a tile.
func (l *geoTIFFLayout) decompress(compressedData []byte, size int) ([]byte, error) {
	switch l.compression {
	case compressionNone:
		if len(compressedData) < size {
			return nil, errShortRead
		}
		return compressedData[:size], nil
	case compressionLZW:
		tileData := make([]byte, size)
		r := lzw.NewReader(bytes.NewReader(compressedData), lzw.MSB, 8)
		defer r.Close()
		if _, err := io.ReadFull(r, tileData); err != nil {
			return nil, err
		}
		return tileData, nil
	default:
		return nil, errors.ErrUnsupported
	}
}

// pixelCenter returns the latitude and longitude of the center of the pixel
// at column x and row y.
func (l *geoTIFFLayout) pixelCenter(x, y int) (lat, lon float64) {
	return l.originLat - float64(y)*l.scaleLat, l.originLon + float64(x)*l.scaleLon
}

// yieldTile yields a sample for every pixel with data in the tile at
// tileCoord.
func (l *geoTIFFLayout) yieldTile(tileCoord TileCoord, tileData []byte, yield func(Sample)) {
	for ty := range l.tileLength {
		y := tileCoord.R*l.tileLength + ty
		if y >= l.imageLength {
			return
		}
		for tx := range l.tileWidth {
			x := tileCoord.C*l.tileWidth + tx
			if x >= l.imageWidth {
				break
			}
			offset := 4 * (tx + ty*l.tileWidth)
			value := math.Float32frombits(binary.LittleEndian.Uint32(tileData[offset : offset+4]))
			if math.IsNaN(float64(value)) || (l.hasNoData && value == l.noData) {
				continue
			}
			lat, lon := l.pixelCenter(x, y)
			yield(Sample{Lat: lat, Lon: lon, Elevation: float64(value)})
		}
	}
}
