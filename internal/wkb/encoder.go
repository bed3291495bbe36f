// Package wkb encodes projected feature geometries as PostGIS EWKB.
package wkb

import (
	"encoding/binary"
	"math"

	"github.com/wegman-software/osm2mt-go/internal/features"
)

// WKB type constants (ISO SQL/MM specification)
const (
	wkbPoint      = 1
	wkbLineString = 2
	wkbPolygon    = 3

	// SRID flag for EWKB (PostGIS extended WKB)
	wkbSRIDFlag = 0x20000000
)

// Encoder writes little-endian EWKB with an embedded SRID.
// The returned slices are freshly allocated and safe to keep.
type Encoder struct {
	srid uint32
}

// NewEncoder creates an encoder for the given SRID
func NewEncoder(srid int) *Encoder {
	return &Encoder{srid: uint32(srid)}
}

// SRID returns the encoder's SRID
func (e *Encoder) SRID() int {
	return int(e.srid)
}

func (e *Encoder) header(geomType uint32, size int) []byte {
	buf := make([]byte, 0, 9+size)
	buf = append(buf, 0x01)
	buf = binary.LittleEndian.AppendUint32(buf, geomType|wkbSRIDFlag)
	return binary.LittleEndian.AppendUint32(buf, e.srid)
}

// Point encodes a single point
func (e *Encoder) Point(x, y int) []byte {
	buf := e.header(wkbPoint, 16)
	buf = appendFloat64(buf, float64(x))
	return appendFloat64(buf, float64(y))
}

// LineString encodes a coordinate sequence as a linestring
func (e *Encoder) LineString(c features.Coords) []byte {
	buf := e.header(wkbLineString, 4+c.Len()*16)
	return appendPoints(buf, c)
}

// Polygon encodes rings[0] as the shell and the rest as holes.
// Rings that are not closed get their first point appended.
func (e *Encoder) Polygon(rings ...features.Coords) []byte {
	size := 4
	for _, r := range rings {
		size += 4 + (r.Len()+1)*16
	}
	buf := e.header(wkbPolygon, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(rings)))
	for _, r := range rings {
		buf = appendPoints(buf, Close(r))
	}
	return buf
}

// Decoration encodes a point decoration as a point and a line decoration
// as a linestring
func (e *Encoder) Decoration(d features.Decoration) []byte {
	if d.Point && d.Coords.Len() > 0 {
		return e.Point(d.Coords.X[0], d.Coords.Y[0])
	}
	return e.LineString(d.Coords)
}

// Close returns c with its first point appended when it is not closed
func Close(c features.Coords) features.Coords {
	n := c.Len()
	if n == 0 || (c.X[0] == c.X[n-1] && c.Y[0] == c.Y[n-1]) {
		return c
	}
	xs := append(c.X[:n:n], c.X[0])
	ys := append(c.Y[:n:n], c.Y[0])
	return features.Coords{X: xs, Y: ys}
}

func appendPoints(buf []byte, c features.Coords) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Len()))
	for i := range c.X {
		buf = appendFloat64(buf, float64(c.X[i]))
		buf = appendFloat64(buf, float64(c.Y[i]))
	}
	return buf
}

func appendFloat64(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
}
