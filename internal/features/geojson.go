package features

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/wegman-software/osm2mt-go/internal/style"
)

func (c Coords) points() []orb.Point {
	pts := make([]orb.Point, c.Len())
	for i := range c.X {
		pts[i] = orb.Point{float64(c.X[i]), float64(c.Y[i])}
	}
	return pts
}

func (c Coords) polygon() orb.Polygon {
	return orb.Polygon{orb.Ring(c.points())}
}

func newFeature(g orb.Geometry, category string, id SourceID) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["category"] = category
	f.Properties["osm_id"] = id.String()
	return f
}

// GeoJSON renders the bundle as a FeatureCollection in projected
// coordinates. Areas become polygons, linears linestrings and decorations
// points or linestrings.
func (b *Bundle) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	addAreas := func(category string, areas []Area) {
		for _, a := range areas {
			f := newFeature(a.polygon(), category, a.OSMID)
			f.Properties["surface"] = a.Surface
			f.Properties["level"] = string(a.Level)
			fc.Append(f)
		}
	}
	addAreas("outer", b.Areas.Outer)
	addAreas("inner", b.Areas.Inner)
	for _, l := range style.Levels {
		addAreas(string(l), *b.Areas.Level(l))
	}

	for _, bld := range b.Buildings {
		f := newFeature(bld.polygon(), "building", bld.OSMID)
		f.Properties["height"] = bld.Height
		f.Properties["is_part"] = bld.IsPart
		if bld.Material != "" {
			f.Properties["material"] = bld.Material
		}
		fc.Append(f)
	}

	addLinears := func(category string, ls []Linear) {
		for _, l := range ls {
			f := newFeature(orb.LineString(l.points()), category, l.OSMID)
			f.Properties["surface"] = l.Surface
			f.Properties["type"] = l.Type
			f.Properties["layer"] = l.Layer
			fc.Append(f)
		}
	}
	addLinears("highway", b.Highways)
	addLinears("waterway", b.Waterways)

	for _, kind := range b.DecorationKinds() {
		for _, d := range b.Decorations[kind] {
			var g orb.Geometry = orb.LineString(d.points())
			if d.Point {
				g = d.points()[0]
			}
			f := newFeature(g, "decoration", d.OSMID)
			f.Properties["kind"] = kind
			fc.Append(f)
		}
	}
	return fc
}

// WriteGeoJSON writes the GeoJSON rendering of the bundle to path
func (b *Bundle) WriteGeoJSON(path string) error {
	data, err := b.GeoJSON().MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write geojson: %w", err)
	}
	return nil
}
