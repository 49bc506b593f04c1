package demgrid

import (
	"errors"
	"fmt"
)

var errParse = errors.New("parse error")

type GeoKey uint16

const (
	GeoKeyGTModelType  GeoKey = 1024
	GeoKeyGTRasterType GeoKey = 1025
	GeoKeyGTCitation   GeoKey = 1026

	GeoKeyGeodeticCRS   GeoKey = 2048
	GeoKeyGeogCitation  GeoKey = 2049
	GeoKeyGeodeticDatum GeoKey = 2050
	GeoKeyAngularUnits  GeoKey = 2054

	GeoKeyProjectedCRS GeoKey = 3072
)

// Values of GeoKeyGTModelType.
const (
	ModelTypeProjected  = 1
	ModelTypeGeographic = 2
)

// Values of GeoKeyGTRasterType.
const (
	RasterPixelIsArea  = 1
	RasterPixelIsPoint = 2
)

// AngularUnitDegree is the EPSG code for degrees.
const AngularUnitDegree = 9102

const (
	geoDoubleParamsTag = 34736
	geoASCIIParamsTag  = 34737
)

// ParsedGeoKeys are the keys of a GeoTIFF GeoKeyDirectoryTag.
type ParsedGeoKeys struct {
	Params       map[GeoKey]int
	DoubleParams map[GeoKey]float64
	ASCIIParams  map[GeoKey]string
}

// ParseGeoKeys parses a GeoKeyDirectoryTag and the params that it
// references.
func ParseGeoKeys(directory []uint16, doubleParams []float64, asciiParams []byte) (*ParsedGeoKeys, error) {
	if len(directory) < 4 {
		return nil, errParse
	}
	if keyDirectoryVersion := directory[0]; keyDirectoryVersion != 1 {
		return nil, fmt.Errorf("%w: key directory version %d", errParse, keyDirectoryVersion)
	}
	if keyRevision := directory[1]; keyRevision != 1 {
		return nil, fmt.Errorf("%w: key revision %d", errParse, keyRevision)
	}
	if minorRevision := directory[2]; minorRevision > 1 {
		return nil, fmt.Errorf("%w: minor revision %d", errParse, minorRevision)
	}
	numberOfKeys := int(directory[3])
	if len(directory) != 4+4*numberOfKeys {
		return nil, fmt.Errorf("%w: %d keys in %d values", errParse, numberOfKeys, len(directory))
	}

	parsedGeoKeys := &ParsedGeoKeys{
		Params:       make(map[GeoKey]int),
		DoubleParams: make(map[GeoKey]float64),
		ASCIIParams:  make(map[GeoKey]string),
	}
	for i := range numberOfKeys {
		entry := directory[4+4*i : 4+4*(i+1)]
		key := GeoKey(entry[0])
		location := int(entry[1])
		count := int(entry[2])
		valueOrIndex := int(entry[3])
		switch location {
		case 0:
			if count != 1 {
				return nil, fmt.Errorf("%w: key %d: count %d", errParse, key, count)
			}
			parsedGeoKeys.Params[key] = valueOrIndex
		case geoDoubleParamsTag:
			if count != 1 {
				return nil, errors.ErrUnsupported
			}
			if valueOrIndex >= len(doubleParams) {
				return nil, fmt.Errorf("%w: key %d: double param %d out of range", errParse, key, valueOrIndex)
			}
			parsedGeoKeys.DoubleParams[key] = doubleParams[valueOrIndex]
		case geoASCIIParamsTag:
			if valueOrIndex+count > len(asciiParams) {
				return nil, fmt.Errorf("%w: key %d: ascii param out of range", errParse, key)
			}
			parsedGeoKeys.ASCIIParams[key] = string(asciiParams[valueOrIndex : valueOrIndex+count])
		default:
			return nil, errors.ErrUnsupported
		}
	}
	return parsedGeoKeys, nil
}

// pixelOffset returns the offset of a pixel's center from the position
// given by the model tie point, in pixels. Only geographic models in
// degrees are supported, as samples are not reprojected.
func (k *ParsedGeoKeys) pixelOffset() (float64, error) {
	if modelType := k.Params[GeoKeyGTModelType]; modelType != ModelTypeGeographic {
		return 0, fmt.Errorf("model type %d: %w", modelType, errors.ErrUnsupported)
	}
	if angularUnits, ok := k.Params[GeoKeyAngularUnits]; ok && angularUnits != AngularUnitDegree {
		return 0, fmt.Errorf("angular units %d: %w", angularUnits, errors.ErrUnsupported)
	}
	switch rasterType := k.Params[GeoKeyGTRasterType]; rasterType {
	case 0, RasterPixelIsArea:
		return 0.5, nil
	case RasterPixelIsPoint:
		return 0, nil
	default:
		return 0, fmt.Errorf("raster type %d: %w", rasterType, errors.ErrUnsupported)
	}
}
