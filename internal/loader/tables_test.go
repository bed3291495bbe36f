package loader

import (
	"strings"
	"testing"

	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/style"
)

func sampleBundle() *features.Bundle {
	square := features.Coords{X: []int{0, 10, 10, 0, 0}, Y: []int{0, 0, 10, 10, 0}}
	line := features.Coords{X: []int{0, 5}, Y: []int{0, 5}}

	agg := features.NewAggregator()
	agg.AddOuter(features.Area{Coords: square, Surface: "water", Level: style.LevelMedium, OSMID: features.RingID("7.outer#1")})
	agg.AddArea(features.Area{Coords: square, Surface: "grass", Level: style.LevelLow, OSMID: features.NumericID(1)})
	agg.AddBuilding(features.Building{Coords: square, Height: 12, IsPart: true, OSMID: features.NumericID(2)})
	agg.AddBuilding(features.Building{Coords: square, Height: 3, Material: "brick", OSMID: features.NumericID(3)})
	agg.AddHighway(features.Linear{Coords: line, Surface: "asphalt", Type: "primary", Layer: -1, OSMID: features.NumericID(4)})
	agg.AddWaterway(features.Linear{Coords: line, Surface: "water", Type: "stream", OSMID: features.NumericID(5)})
	agg.AddDecoration(features.Decoration{Coords: features.Coords{X: []int{1}, Y: []int{1}}, Kind: "tree", Point: true, OSMID: features.NumericID(6)})
	agg.AddDecoration(features.Decoration{Coords: line, Kind: "fence", OSMID: features.NumericID(8)})
	return agg.Bundle()
}

func TestTables(t *testing.T) {
	tables := Tables(sampleBundle(), "mt", 25832)

	wantRows := map[string]int{
		"mt_areas":       2,
		"mt_buildings":   2,
		"mt_highways":    1,
		"mt_waterways":   1,
		"mt_decorations": 2,
	}
	if len(tables) != len(wantRows) {
		t.Fatalf("got %d tables, want %d", len(tables), len(wantRows))
	}
	for _, tbl := range tables {
		want, ok := wantRows[tbl.Name]
		if !ok {
			t.Errorf("unexpected table %q", tbl.Name)
			continue
		}
		if len(tbl.Rows) != want {
			t.Errorf("%s rows = %d, want %d", tbl.Name, len(tbl.Rows), want)
		}
		for _, row := range tbl.Rows {
			if len(row) != len(tbl.ColumnNames()) {
				t.Errorf("%s row has %d values, want %d", tbl.Name, len(row), len(tbl.ColumnNames()))
			}
			if _, ok := row[len(row)-1].([]byte); !ok {
				t.Errorf("%s last value should be EWKB bytes", tbl.Name)
			}
		}
	}

	areas := tables[0]
	if areas.Rows[0][0] != "7.outer#1" || areas.Rows[0][1] != "outer" {
		t.Errorf("first area row = %v", areas.Rows[0][:4])
	}
	if areas.Rows[1][1] != "low" || areas.Rows[1][2] != "grass" {
		t.Errorf("second area row = %v", areas.Rows[1][:4])
	}

	buildings := tables[1]
	if buildings.Rows[0][2] != nil {
		t.Errorf("missing material should load as NULL, got %v", buildings.Rows[0][2])
	}
	if buildings.Rows[1][2] != "brick" {
		t.Errorf("material = %v", buildings.Rows[1][2])
	}

	decorations := tables[4]
	if decorations.Rows[0][1] != "fence" || decorations.Rows[1][1] != "tree" {
		t.Errorf("decorations should be ordered by kind: %v, %v", decorations.Rows[0][1], decorations.Rows[1][1])
	}
}

func TestTableSQL(t *testing.T) {
	tbl := Tables(sampleBundle(), "osm2mt", 25832)[2]

	create := tbl.createSQL(`"public"."osm2mt_highways"`, 25832)
	for _, want := range []string{
		`CREATE UNLOGGED TABLE IF NOT EXISTS "public"."osm2mt_highways"`,
		"layer INTEGER",
		"geom GEOMETRY(LineString, 25832)",
	} {
		if !strings.Contains(create, want) {
			t.Errorf("createSQL missing %q:\n%s", want, create)
		}
	}

	staging := tbl.stagingSQL("tmp")
	if !strings.Contains(staging, "geom_wkb BYTEA") || !strings.Contains(staging, "ON COMMIT DROP") {
		t.Errorf("stagingSQL = %s", staging)
	}

	names := tbl.ColumnNames()
	if names[0] != "osm_id" || names[len(names)-1] != "geom_wkb" {
		t.Errorf("ColumnNames() = %v", names)
	}
}
