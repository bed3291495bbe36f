package extract

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/osmdata"
	"github.com/wegman-software/osm2mt-go/internal/style"
)

// Nodes on a ~100 m grid near 52N 9E, inside UTM zone 32
const sample = `{"elements": [
  {"type": "node", "id": 1, "lat": 52.0000, "lon": 9.0000},
  {"type": "node", "id": 2, "lat": 52.0000, "lon": 9.0015},
  {"type": "node", "id": 3, "lat": 52.0010, "lon": 9.0015},
  {"type": "node", "id": 4, "lat": 52.0010, "lon": 9.0000},
  {"type": "node", "id": 5, "lat": 52.0020, "lon": 9.0000},
  {"type": "node", "id": 6, "lat": 52.0020, "lon": 9.0015},
  {"type": "node", "id": 7, "lat": 52.0005, "lon": 9.0005, "tags": {"natural": "tree"}},
  {"type": "node", "id": 8, "lat": 52.0006, "lon": 9.0006, "tags": {"barrier": "unrecognized_value"}},
  {"type": "node", "id": 9, "lat": 52.0007, "lon": 9.0007, "tags": {"natural": "unrecognized_value"}},
  {"type": "node", "id": 10, "lat": 52.0008, "lon": 9.0008, "tags": {"natural": "tree", "boundary": "administrative"}},

  {"type": "way", "id": 100, "nodes": [1, 2, 3, 4], "tags": {}},
  {"type": "way", "id": 101, "nodes": [4, 5, 6, 1]},
  {"type": "way", "id": 102, "nodes": [1, 2, 3, 4, 1], "tags": {"surface": "asphalt"}},
  {"type": "way", "id": 103, "nodes": [1, 2, 3, 4, 1], "tags": {"landuse": "residential"}},
  {"type": "way", "id": 104, "nodes": [1, 2, 3, 4, 1], "tags": {"building": "yes", "building:levels": "3", "roof:levels": "1"}},
  {"type": "way", "id": 105, "nodes": [1, 2, 3], "tags": {"highway": "primary", "tunnel": "yes"}},
  {"type": "way", "id": 106, "nodes": [1, 2, 3], "tags": {"highway": "primary", "tunnel": "yes", "layer": "2"}},
  {"type": "way", "id": 107, "nodes": [4, 5], "tags": {"waterway": "stream"}},
  {"type": "way", "id": 108, "nodes": [5, 6], "tags": {"barrier": "fence"}},
  {"type": "way", "id": 109, "nodes": [1, 2, 999], "tags": {"highway": "service"}},
  {"type": "way", "id": 110, "nodes": [1, 2, 3, 4, 1], "tags": {"boundary": "administrative"}},
  {"type": "way", "id": 111, "nodes": [1, 2, 3, 4, 1], "tags": {"name": "nothing"}},
  {"type": "way", "id": 112, "nodes": [1, 2, 3], "tags": {"landuse": "forest"}},

  {"type": "relation", "id": 200, "tags": {"type": "multipolygon", "natural": "water"},
   "members": [{"type": "way", "ref": 100, "role": "outer"}, {"type": "way", "ref": 101, "role": "outer"}]},
  {"type": "relation", "id": 201, "tags": {"type": "route", "route": "bus"},
   "members": [{"type": "way", "ref": 105, "role": ""}]},
  {"type": "relation", "id": 202, "members": [{"type": "way", "ref": 100, "role": "outer"}]},
  {"type": "relation", "id": 203, "tags": {"type": "multipolygon", "building": "yes"},
   "members": [{"type": "way", "ref": 100, "role": "outer"}, {"type": "way", "ref": 101, "role": ""}]},
  {"type": "changeset", "id": 300}
]}`

func run(t *testing.T, workers int) (*features.Bundle, *Stats, *diag.Recorder) {
	t.Helper()
	ds, err := osmdata.DecodeJSON(context.Background(), strings.NewReader(sample))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	rec := &diag.Recorder{}
	e, err := New(Options{Workers: workers, Reporter: rec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, stats, err := e.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return b, stats, rec
}

func TestRelationRingScenario(t *testing.T) {
	b, _, _ := run(t, 1)

	if len(b.Areas.Outer) != 1 {
		t.Fatalf("outer areas = %d, want 1", len(b.Areas.Outer))
	}
	outer := b.Areas.Outer[0]
	if outer.Surface != "water" || outer.OSMID.String() != "200.outer#1" {
		t.Errorf("outer = %s %s", outer.Surface, outer.OSMID)
	}
	if outer.Len() != 7 || outer.X[0] != outer.X[6] || outer.Y[0] != outer.Y[6] {
		t.Errorf("outer ring not closed with 7 points: %v %v", outer.X, outer.Y)
	}
}

func TestWayAreaLevels(t *testing.T) {
	b, _, rec := run(t, 1)

	if len(b.Areas.High) != 1 || b.Areas.High[0].Surface != "asphalt" {
		t.Errorf("high areas = %+v", b.Areas.High)
	}
	if len(b.Areas.Low) != 1 || b.Areas.Low[0].Surface != "residential_landuse" {
		t.Errorf("low areas = %+v", b.Areas.Low)
	}
	if !rec.Has(diag.UndefinedSurface, diag.Way(111)) {
		t.Error("way 111 should have an undefined surface")
	}
	if !rec.Has(diag.UnclosedArea, diag.Way(112)) {
		t.Error("way 112 should be an unclosed area")
	}
}

func TestBuildingsAndLinears(t *testing.T) {
	b, _, _ := run(t, 1)

	var way104 *features.Building
	for i := range b.Buildings {
		if b.Buildings[i].OSMID.String() == "104" {
			way104 = &b.Buildings[i]
		}
	}
	if way104 == nil || way104.Height != 12 {
		t.Fatalf("building 104 = %+v, want height 12", way104)
	}
	if len(b.Buildings) != 2 {
		t.Errorf("buildings = %d, want 2 (way 104 and relation 203)", len(b.Buildings))
	}

	if len(b.Highways) != 2 {
		t.Fatalf("highways = %d, want 2", len(b.Highways))
	}
	if b.Highways[0].Layer != -1 || b.Highways[1].Layer != 0 {
		t.Errorf("layers = %d, %d, want -1, 0", b.Highways[0].Layer, b.Highways[1].Layer)
	}
	if b.Highways[0].Surface != "highway" || b.Highways[0].Type != "primary" {
		t.Errorf("highway = %+v", b.Highways[0])
	}
	if len(b.Waterways) != 1 || b.Waterways[0].Surface != "water" || b.Waterways[0].Type != "stream" {
		t.Errorf("waterways = %+v", b.Waterways)
	}
}

func TestDecorations(t *testing.T) {
	b, _, rec := run(t, 1)

	if len(b.Decorations["tree"]) != 1 || !b.Decorations["tree"][0].Point {
		t.Errorf("trees = %+v", b.Decorations["tree"])
	}
	if len(b.Decorations["barrier"]) != 1 || b.Decorations["barrier"][0].OSMID.Int() != 8 {
		t.Errorf("barrier fallback = %+v", b.Decorations["barrier"])
	}
	if len(b.Decorations["fence"]) != 1 || b.Decorations["fence"][0].Point {
		t.Errorf("fence = %+v", b.Decorations["fence"])
	}
	if !rec.Has(diag.UnknownDecoration, diag.Node(9)) {
		t.Error("node 9 should be dropped as unknown decoration")
	}
	for _, ds := range b.Decorations {
		for _, d := range ds {
			if d.OSMID.Int() == 10 {
				t.Error("boundary node must not become a decoration")
			}
		}
	}
}

func TestDiagnostics(t *testing.T) {
	_, _, rec := run(t, 1)

	tests := []struct {
		reason diag.Reason
		ref    diag.Ref
	}{
		{diag.UnresolvedNode, diag.Way(109)},
		{diag.BoundaryDropped, diag.Way(110)},
		{diag.UntaggedWay, diag.Way(101)},
		{diag.UntaggedWay, diag.Way(100)},
		{diag.RelationUnroutable, diag.Relation(201)},
		{diag.RelationNoTags, diag.Relation(202)},
		{diag.UnknownType, diag.Ref{Type: "changeset", ID: 300}},
		{diag.DefaultBarrier, diag.Node(8)},
	}
	for _, tt := range tests {
		if !rec.Has(tt.reason, tt.ref) {
			t.Errorf("missing %s for %s", tt.reason, tt.ref)
		}
	}
}

func TestBoundsCoverEveryCoordinate(t *testing.T) {
	b, stats, _ := run(t, 1)
	bounds := b.Bounds()
	if !bounds.Valid {
		t.Fatal("bounds should be set")
	}

	var xs, ys []int
	collect := func(c features.Coords) {
		xs = append(xs, c.X...)
		ys = append(ys, c.Y...)
	}
	for _, l := range style.Levels {
		for _, a := range *b.Areas.Level(l) {
			collect(a.Coords)
		}
	}
	for _, a := range b.Areas.Outer {
		collect(a.Coords)
	}
	for _, bld := range b.Buildings {
		collect(bld.Coords)
	}
	for _, l := range append(b.Highways, b.Waterways...) {
		collect(l.Coords)
	}
	for _, ds := range b.Decorations {
		for _, d := range ds {
			collect(d.Coords)
		}
	}

	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := range xs {
		if !bounds.Contains(xs[i], ys[i]) {
			t.Fatalf("(%d, %d) outside bounds %+v", xs[i], ys[i], bounds)
		}
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	if bounds.MinX != minX || bounds.MaxX != maxX || bounds.MinY != minY || bounds.MaxY != maxY {
		t.Errorf("bounds %+v not minimal (%d %d %d %d)", bounds, minX, maxX, minY, maxY)
	}
	if stats.BBox != bounds {
		t.Errorf("stats bbox %+v != bundle bounds %+v", stats.BBox, bounds)
	}
}

func TestSharedNodesProjectOnce(t *testing.T) {
	b, stats, _ := run(t, 1)

	if stats.Projections != 10 {
		t.Errorf("projections = %d, want 10", stats.Projections)
	}
	// node 1 starts way 102 and way 104
	if b.Areas.High[0].X[0] != b.Buildings[0].X[0] || b.Areas.High[0].Y[0] != b.Buildings[0].Y[0] {
		t.Error("shared node projected to different coordinates")
	}
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	encode := func(b *features.Bundle) []byte {
		var buf bytes.Buffer
		if err := b.WriteJSON(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	sequential, _, _ := run(t, 1)
	want := encode(sequential)
	for i := 0; i < 5; i++ {
		parallel, _, _ := run(t, 4)
		if got := encode(parallel); !bytes.Equal(got, want) {
			t.Fatalf("run %d with 4 workers differs from sequential output", i)
		}
	}
}

func TestEmptyDataset(t *testing.T) {
	e, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, stats, err := e.Run(context.Background(), &osmdata.Dataset{})
	if err != nil {
		t.Fatal(err)
	}
	if b.MinX != nil || stats.Features.Total() != 0 {
		t.Errorf("empty run produced %+v", stats.Features)
	}
}

func TestRunCancelled(t *testing.T) {
	ds, err := osmdata.DecodeJSON(context.Background(), strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	e, _ := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := e.Run(ctx, ds); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestUniformRelationIgnoresRoles(t *testing.T) {
	b, _, _ := run(t, 1)

	for _, bld := range b.Buildings {
		if bld.OSMID.String() == "203.outer#1" {
			if want := []int{b.Areas.Outer[0].X[0]}; !reflect.DeepEqual(bld.X[:1], want) {
				t.Errorf("relation 203 ring starts at %d, want %d", bld.X[0], want[0])
			}
			return
		}
	}
	t.Error("relation 203 should yield one building ring")
}
