package proj

import (
	"fmt"
	"math"
)

// Ellipsoid inverse flattenings; both share the WGS84 semi-major axis
const (
	semiMajorAxis = 6378137.0
	invFlatGRS80  = 298.257222101
	invFlatWGS84  = 298.257223563

	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
)

// utmZone holds the precomputed series for one transverse mercator zone
type utmZone struct {
	zone    int
	south   bool
	lambda0 float64 // central meridian, radians

	n     float64
	a     float64 // rectifying radius A
	alpha [3]float64
}

func utmForSRID(srid int) (*utmZone, error) {
	switch {
	case srid >= 25828 && srid <= 25838:
		return newUTMZone(srid-25800, false, invFlatGRS80), nil
	case srid >= 32601 && srid <= 32660:
		return newUTMZone(srid-32600, false, invFlatWGS84), nil
	case srid >= 32701 && srid <= 32760:
		return newUTMZone(srid-32700, true, invFlatWGS84), nil
	}
	return nil, fmt.Errorf("unsupported target SRID: %d (supported: 3857, 25828-25838, 32601-32660, 32701-32760)", srid)
}

func newUTMZone(zone int, south bool, invFlat float64) *utmZone {
	f := 1 / invFlat
	n := f / (2 - f)
	n2, n3 := n*n, n*n*n
	return &utmZone{
		zone:    zone,
		south:   south,
		lambda0: float64(zone*6-183) * math.Pi / 180,
		n:       n,
		a:       semiMajorAxis / (1 + n) * (1 + n2/4 + n2*n2/64),
		alpha: [3]float64{
			n/2 - 2*n2/3 + 5*n3/16,
			13*n2/48 - 3*n3/5,
			61 * n3 / 240,
		},
	}
}

// forward projects lon, lat in degrees with the Krüger series
func (z *utmZone) forward(lon, lat float64) (x, y float64) {
	phi := lat * math.Pi / 180
	dlam := lon*math.Pi/180 - z.lambda0

	c := 2 * math.Sqrt(z.n) / (1 + z.n)
	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - c*math.Atanh(c*sinPhi))

	xi := math.Atan2(t, math.Cos(dlam))
	eta := math.Atanh(math.Sin(dlam) / math.Sqrt(1+t*t))

	e, n := eta, xi
	for j, alpha := range z.alpha {
		k := float64(2 * (j + 1))
		e += alpha * math.Cos(k*xi) * math.Sinh(k*eta)
		n += alpha * math.Sin(k*xi) * math.Cosh(k*eta)
	}

	x = utmFalseEasting + utmScale*z.a*e
	y = utmScale * z.a * n
	if z.south {
		y += utmFalseNorthing
	}
	return x, y
}
