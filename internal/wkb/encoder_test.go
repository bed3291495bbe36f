package wkb

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/wegman-software/osm2mt-go/internal/features"
)

func readHeader(t *testing.T, b []byte) (geomType, srid uint32) {
	t.Helper()
	if len(b) < 9 {
		t.Fatalf("short EWKB: %d bytes", len(b))
	}
	if b[0] != 0x01 {
		t.Fatalf("byte order = %x, want little-endian", b[0])
	}
	return binary.LittleEndian.Uint32(b[1:5]), binary.LittleEndian.Uint32(b[5:9])
}

func float(b []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
}

func TestPoint(t *testing.T) {
	e := NewEncoder(25832)
	b := e.Point(500000, 5761038)

	if len(b) != 25 {
		t.Fatalf("len = %d, want 25", len(b))
	}
	typ, srid := readHeader(t, b)
	if typ != wkbPoint|wkbSRIDFlag || srid != 25832 {
		t.Errorf("type = %x, srid = %d", typ, srid)
	}
	if float(b, 9) != 500000 || float(b, 17) != 5761038 {
		t.Errorf("coords = %v, %v", float(b, 9), float(b, 17))
	}
}

func TestLineString(t *testing.T) {
	e := NewEncoder(3857)
	b := e.LineString(features.Coords{X: []int{1, 2, 3}, Y: []int{4, 5, 6}})

	if len(b) != 13+3*16 {
		t.Fatalf("len = %d, want %d", len(b), 13+3*16)
	}
	typ, _ := readHeader(t, b)
	if typ != wkbLineString|wkbSRIDFlag {
		t.Errorf("type = %x", typ)
	}
	if n := binary.LittleEndian.Uint32(b[9:13]); n != 3 {
		t.Errorf("points = %d, want 3", n)
	}
	if float(b, 13+2*16) != 3 || float(b, 13+2*16+8) != 6 {
		t.Error("last point mismatch")
	}
}

func TestPolygonClosesRing(t *testing.T) {
	e := NewEncoder(25832)
	open := features.Coords{X: []int{0, 10, 10}, Y: []int{0, 0, 10}}
	b := e.Polygon(open)

	typ, _ := readHeader(t, b)
	if typ != wkbPolygon|wkbSRIDFlag {
		t.Errorf("type = %x", typ)
	}
	if rings := binary.LittleEndian.Uint32(b[9:13]); rings != 1 {
		t.Fatalf("rings = %d, want 1", rings)
	}
	if n := binary.LittleEndian.Uint32(b[13:17]); n != 4 {
		t.Fatalf("ring points = %d, want 4", n)
	}
	last := 17 + 3*16
	if float(b, last) != 0 || float(b, last+8) != 0 {
		t.Error("ring should be closed with the first point")
	}
	if open.Len() != 3 {
		t.Error("Polygon must not modify its input")
	}
}

func TestClose(t *testing.T) {
	closed := features.Coords{X: []int{0, 1, 0}, Y: []int{0, 1, 0}}
	if got := Close(closed); got.Len() != 3 {
		t.Errorf("closed ring changed: %v", got)
	}
	if got := Close(features.Coords{}); got.Len() != 0 {
		t.Errorf("empty ring changed: %v", got)
	}
}

func TestDecoration(t *testing.T) {
	e := NewEncoder(25832)
	pt := e.Decoration(features.Decoration{Coords: features.Coords{X: []int{1}, Y: []int{2}}, Point: true})
	if typ, _ := readHeader(t, pt); typ != wkbPoint|wkbSRIDFlag {
		t.Errorf("point decoration type = %x", typ)
	}
	line := e.Decoration(features.Decoration{Coords: features.Coords{X: []int{1, 2}, Y: []int{2, 3}}})
	if typ, _ := readHeader(t, line); typ != wkbLineString|wkbSRIDFlag {
		t.Errorf("line decoration type = %x", typ)
	}
}
