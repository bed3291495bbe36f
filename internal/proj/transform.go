package proj

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SRID constants for common projections
const (
	SRID4326  = 4326  // WGS84 (lat/lon)
	SRID3857  = 3857  // Web Mercator
	SRID25832 = 25832 // ETRS89 / UTM zone 32N
)

// DefaultSRID is the target projection of extracted features
const DefaultSRID = SRID25832

// Transformer projects WGS84 coordinates to a planar target projection
type Transformer struct {
	TargetSRID int
	utm        *utmZone
}

// NewTransformer creates a transformer from WGS84 to the target SRID.
// Supported targets: 3857, 258xx (ETRS89 UTM 28N-38N), 326xx and 327xx
// (WGS84 UTM north and south).
func NewTransformer(targetSRID int) (*Transformer, error) {
	if targetSRID == SRID3857 {
		return &Transformer{TargetSRID: targetSRID}, nil
	}
	zone, err := utmForSRID(targetSRID)
	if err != nil {
		return nil, err
	}
	return &Transformer{TargetSRID: targetSRID, utm: zone}, nil
}

// Transform converts lon, lat in degrees to x, y in meters
func (t *Transformer) Transform(lon, lat float64) (x, y float64) {
	if t.utm != nil {
		return t.utm.forward(lon, lat)
	}
	return lonLatToWebMercator(lon, lat)
}

// Project converts lon, lat to rounded integer coordinates
func (t *Transformer) Project(lon, lat float64) Point {
	x, y := t.Transform(lon, lat)
	return Point{X: round(x), Y: round(y)}
}

// round rounds to the nearest integer, half to even
func round(v float64) int {
	return int(math.RoundToEven(v))
}

// Web Mercator constants
const (
	// Semi-major axis of WGS84 ellipsoid in meters
	earthRadius = 6378137.0
	// Maximum extent of Web Mercator
	maxExtent = 20037508.342789244
)

// lonLatToWebMercator converts WGS84 (lon, lat) to Web Mercator (x, y)
func lonLatToWebMercator(lon, lat float64) (x, y float64) {
	// Clamp latitude to avoid infinity at poles
	if lat > 85.06 {
		lat = 85.06
	} else if lat < -85.06 {
		lat = -85.06
	}

	x = lon * maxExtent / 180.0

	// y = R * ln(tan(π/4 + φ/2))
	latRad := lat * math.Pi / 180.0
	y = math.Log(math.Tan(math.Pi/4.0+latRad/2.0)) * earthRadius

	return x, y
}

// ParseSRID parses a projection string to SRID
// Accepts: "25832", "EPSG:25832", "epsg:3857", ...
func ParseSRID(s string) (int, error) {
	code := strings.TrimSpace(s)
	if len(code) > 5 && strings.EqualFold(code[:5], "EPSG:") {
		code = code[5:]
	}
	srid, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("invalid projection %q: %w", s, err)
	}
	if _, err := NewTransformer(srid); err != nil {
		return 0, err
	}
	return srid, nil
}
