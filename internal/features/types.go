// Package features holds the typed output collections, their bounding box
// and the JSON bundle handed to the world builder.
package features

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/wegman-software/osm2mt-go/internal/style"
)

// SourceID is the osm_id of a feature: a number for ways and nodes,
// a string such as "123.outer#1" for relation rings.
type SourceID struct {
	num   int64
	str   string
	isStr bool
}

// NumericID creates a numeric source id
func NumericID(id int64) SourceID { return SourceID{num: id} }

// RingID creates a string source id
func RingID(id string) SourceID { return SourceID{str: id, isStr: true} }

// IsRing reports whether the id names a relation ring
func (s SourceID) IsRing() bool { return s.isStr }

// Int returns the numeric id, 0 for ring ids
func (s SourceID) Int() int64 { return s.num }

func (s SourceID) String() string {
	if s.isStr {
		return s.str
	}
	return strconv.FormatInt(s.num, 10)
}

func (s SourceID) MarshalJSON() ([]byte, error) {
	if s.isStr {
		return json.Marshal(s.str)
	}
	return strconv.AppendInt(nil, s.num, 10), nil
}

func (s *SourceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = RingID(str)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid osm_id %s: %w", data, err)
	}
	*s = NumericID(n)
	return nil
}

// Coords are parallel x and y sequences of equal length
type Coords struct {
	X []int `json:"x"`
	Y []int `json:"y"`
}

// Len returns the number of points
func (c Coords) Len() int { return len(c.X) }

// Area is a surface polygon
type Area struct {
	Coords
	Surface string      `json:"surface"`
	Level   style.Level `json:"level"`
	OSMID   SourceID    `json:"osm_id"`
}

// Building is a building outline
type Building struct {
	Coords
	Height   int      `json:"height"`
	Material string   `json:"material,omitempty"`
	IsPart   bool     `json:"is_part"`
	OSMID    SourceID `json:"osm_id"`
}

// Linear is a highway or waterway polyline
type Linear struct {
	Coords
	Surface string   `json:"surface"`
	Type    string   `json:"type"`
	Layer   int      `json:"layer"`
	OSMID   SourceID `json:"osm_id"`
}

// Decoration is a point or polyline decoration.
// Points encode x and y as scalars, polylines as arrays.
type Decoration struct {
	Coords
	Kind  string
	Point bool
	OSMID SourceID
}

type pointJSON struct {
	X     int      `json:"x"`
	Y     int      `json:"y"`
	OSMID SourceID `json:"osm_id"`
}

type lineJSON struct {
	X     []int    `json:"x"`
	Y     []int    `json:"y"`
	OSMID SourceID `json:"osm_id"`
}

func (d Decoration) MarshalJSON() ([]byte, error) {
	if d.Point {
		if d.Len() != 1 {
			return nil, fmt.Errorf("point decoration %s has %d coordinates", d.OSMID, d.Len())
		}
		return json.Marshal(pointJSON{X: d.X[0], Y: d.Y[0], OSMID: d.OSMID})
	}
	return json.Marshal(lineJSON{X: d.X, Y: d.Y, OSMID: d.OSMID})
}

func (d *Decoration) UnmarshalJSON(data []byte) error {
	var raw struct {
		X     json.RawMessage `json:"x"`
		Y     json.RawMessage `json:"y"`
		OSMID SourceID        `json:"osm_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.OSMID = raw.OSMID

	x := bytes.TrimSpace(raw.X)
	if len(x) > 0 && x[0] == '[' {
		d.Point = false
		if err := json.Unmarshal(raw.X, &d.X); err != nil {
			return err
		}
		return json.Unmarshal(raw.Y, &d.Y)
	}

	var px, py int
	if err := json.Unmarshal(raw.X, &px); err != nil {
		return err
	}
	if err := json.Unmarshal(raw.Y, &py); err != nil {
		return err
	}
	d.Point = true
	d.X, d.Y = []int{px}, []int{py}
	return nil
}

// Areas groups area polygons by origin and level
type Areas struct {
	Outer  []Area `json:"outer"`
	Inner  []Area `json:"inner"`
	Low    []Area `json:"low"`
	Medium []Area `json:"medium"`
	High   []Area `json:"high"`
}

// Level returns the bucket for way areas of the given level
func (a *Areas) Level(l style.Level) *[]Area {
	switch l {
	case style.LevelMedium:
		return &a.Medium
	case style.LevelHigh:
		return &a.High
	default:
		return &a.Low
	}
}

// Len returns the number of areas across all buckets
func (a Areas) Len() int {
	return len(a.Outer) + len(a.Inner) + len(a.Low) + len(a.Medium) + len(a.High)
}
