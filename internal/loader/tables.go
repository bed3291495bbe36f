package loader

import (
	"fmt"

	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/wkb"
)

// Column is one attribute column of a feature table
type Column struct {
	Name string
	Type string
}

// Table is a feature collection staged for COPY. Every row holds the
// attribute values in column order followed by the EWKB geometry.
type Table struct {
	Name     string
	Columns  []Column
	GeomType string
	Rows     [][]any
}

// ColumnNames returns attribute column names followed by geom_wkb
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return append(names, "geom_wkb")
}

// Tables converts a bundle into the five feature tables
func Tables(b *features.Bundle, prefix string, srid int) []*Table {
	enc := wkb.NewEncoder(srid)

	areas := &Table{
		Name: prefix + "_areas",
		Columns: []Column{
			{"osm_id", "TEXT NOT NULL"},
			{"collection", "TEXT NOT NULL"},
			{"surface", "TEXT"},
			{"level", "TEXT"},
		},
		GeomType: "Polygon",
	}
	for _, set := range []struct {
		name  string
		areas []features.Area
	}{
		{"outer", b.Areas.Outer},
		{"inner", b.Areas.Inner},
		{"low", b.Areas.Low},
		{"medium", b.Areas.Medium},
		{"high", b.Areas.High},
	} {
		for _, a := range set.areas {
			areas.Rows = append(areas.Rows, []any{a.OSMID.String(), set.name, a.Surface, string(a.Level), enc.Polygon(a.Coords)})
		}
	}

	buildings := &Table{
		Name: prefix + "_buildings",
		Columns: []Column{
			{"osm_id", "TEXT NOT NULL"},
			{"height", "INTEGER"},
			{"material", "TEXT"},
			{"is_part", "BOOLEAN"},
		},
		GeomType: "Polygon",
	}
	for _, bl := range b.Buildings {
		var material any
		if bl.Material != "" {
			material = bl.Material
		}
		buildings.Rows = append(buildings.Rows, []any{bl.OSMID.String(), int32(bl.Height), material, bl.IsPart, enc.Polygon(bl.Coords)})
	}

	linears := func(name string, ls []features.Linear) *Table {
		t := &Table{
			Name: prefix + "_" + name,
			Columns: []Column{
				{"osm_id", "TEXT NOT NULL"},
				{"type", "TEXT"},
				{"surface", "TEXT"},
				{"layer", "INTEGER"},
			},
			GeomType: "LineString",
		}
		for _, l := range ls {
			t.Rows = append(t.Rows, []any{l.OSMID.String(), l.Type, l.Surface, int32(l.Layer), enc.LineString(l.Coords)})
		}
		return t
	}

	decorations := &Table{
		Name: prefix + "_decorations",
		Columns: []Column{
			{"osm_id", "TEXT NOT NULL"},
			{"kind", "TEXT NOT NULL"},
		},
		GeomType: "Geometry",
	}
	for _, kind := range b.DecorationKinds() {
		for _, d := range b.Decorations[kind] {
			decorations.Rows = append(decorations.Rows, []any{d.OSMID.String(), kind, enc.Decoration(d)})
		}
	}

	return []*Table{
		areas,
		buildings,
		linears("highways", b.Highways),
		linears("waterways", b.Waterways),
		decorations,
	}
}

// createSQL returns the DDL of the final table
func (t *Table) createSQL(qualified string, srid int) string {
	cols := ""
	for _, c := range t.Columns {
		cols += fmt.Sprintf("\t%s %s,\n", c.Name, c.Type)
	}
	return fmt.Sprintf("CREATE UNLOGGED TABLE IF NOT EXISTS %s (\n%s\tgeom GEOMETRY(%s, %d)\n)",
		qualified, cols, t.GeomType, srid)
}

// stagingSQL returns the DDL of the temp table COPY writes into
func (t *Table) stagingSQL(name string) string {
	cols := ""
	for _, c := range t.Columns {
		cols += fmt.Sprintf("\t%s %s,\n", c.Name, c.Type)
	}
	return fmt.Sprintf("CREATE TEMP TABLE %s (\n%s\tgeom_wkb BYTEA\n) ON COMMIT DROP", name, cols)
}
