package extract

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osm2mt-go/internal/derive"
	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/proj"
	"github.com/wegman-software/osm2mt-go/internal/rings"
	"github.com/wegman-software/osm2mt-go/internal/style"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// passes holds the read-only state shared by the bucket passes
type passes struct {
	extractor *Extractor
	table     *proj.Table
	assembler *rings.Assembler

	ringCount atomic.Int64
}

func (p *passes) rings() int { return int(p.ringCount.Load()) }

func (p *passes) report(reason diag.Reason, ref diag.Ref, detail string) {
	p.extractor.report.Report(diag.Diagnostic{Reason: reason, Element: ref, Detail: detail})
}

// resolve projects a node sequence; unknown nodes drop the whole element
func (p *passes) resolve(ref diag.Ref, nodes []osm.NodeID) (features.Coords, bool) {
	xs, ys, missing, ok := p.table.Resolve(nodes)
	if !ok {
		p.report(diag.UnresolvedNode, ref, fmt.Sprintf("node/%d", missing))
		return features.Coords{}, false
	}
	return features.Coords{X: xs, Y: ys}, true
}

// polygon resolves a node sequence that must form a closed ring
func (p *passes) polygon(ref diag.Ref, nodes []osm.NodeID, reason diag.Reason) (features.Coords, bool) {
	c, ok := p.resolve(ref, nodes)
	if !ok {
		return c, false
	}
	n := c.Len()
	if n < 4 || c.X[0] != c.X[n-1] || c.Y[0] != c.Y[n-1] {
		p.report(reason, ref, fmt.Sprintf("%d points, not closed", n))
		return c, false
	}
	if distinctPoints(c) < 3 {
		p.report(diag.DegenerateRing, ref, fmt.Sprintf("%d distinct points", distinctPoints(c)))
		return c, false
	}
	return c, true
}

// polyline resolves a node sequence with at least two points
func (p *passes) polyline(ref diag.Ref, nodes []osm.NodeID) (features.Coords, bool) {
	c, ok := p.resolve(ref, nodes)
	if !ok {
		return c, false
	}
	if c.Len() < 2 {
		p.report(diag.TooFewNodes, ref, fmt.Sprintf("%d points", c.Len()))
		return c, false
	}
	return c, true
}

func distinctPoints(c features.Coords) int {
	seen := make(map[proj.Point]struct{}, c.Len())
	for i := range c.X {
		seen[proj.Point{X: c.X[i], Y: c.Y[i]}] = struct{}{}
	}
	return len(seen)
}

func checkCtx(ctx context.Context, i int) error {
	if i%checkEvery == 0 {
		return ctx.Err()
	}
	return nil
}

// areas builds way areas and the rings of area relations
func (p *passes) areas(ctx context.Context, b *buckets) (*features.Aggregator, error) {
	agg := features.NewAggregator()
	classifier := p.extractor.surfaces

	for i, w := range b.areas {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Way(int64(w.ID))
		t := tags.FromOSM(w.Tags)

		a, ok := classifier.Classify(t)
		if !ok {
			p.report(diag.UndefinedSurface, ref, t.String())
			continue
		}
		c, ok := p.polygon(ref, w.Nodes.NodeIDs(), diag.UnclosedArea)
		if !ok {
			continue
		}
		agg.AddArea(features.Area{Coords: c, Surface: a.Surface, Level: a.Level, OSMID: features.NumericID(int64(w.ID))})
	}

	for i, r := range b.areaRelations {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		for _, ring := range p.assembler.Assemble(r) {
			p.ringCount.Add(1)
			ref := diag.Relation(int64(r.ID))
			c, ok := p.polygon(ref, ring.Nodes, diag.OpenRing)
			if !ok {
				continue
			}
			id := features.RingID(ring.ID())

			if ring.Role == rings.RoleInner {
				agg.AddInner(features.Area{Coords: c, Surface: "default", Level: style.LevelLow, OSMID: id})
				continue
			}
			a, ok := classifier.Classify(ring.Tags)
			if !ok {
				p.report(diag.UndefinedSurface, ref, ring.ID())
				continue
			}
			agg.AddOuter(features.Area{Coords: c, Surface: a.Surface, Level: a.Level, OSMID: id})
		}
	}
	return agg, nil
}

func (p *passes) building(ref diag.Ref, t tags.Tags, c features.Coords, id features.SourceID) features.Building {
	d := p.extractor.deriver
	b := features.Building{
		Coords: c,
		Height: d.Height(ref, t),
		IsPart: t.Has("building:part"),
		OSMID:  id,
	}
	if m, ok := d.Material(ref, t); ok {
		b.Material = m
	}
	return b
}

// buildings builds building outlines from ways and building relations
func (p *passes) buildings(ctx context.Context, b *buckets) (*features.Aggregator, error) {
	agg := features.NewAggregator()

	for i, w := range b.buildings {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Way(int64(w.ID))
		c, ok := p.resolve(ref, w.Nodes.NodeIDs())
		if !ok {
			continue
		}
		if distinctPoints(c) < 3 {
			p.report(diag.TooFewNodes, ref, fmt.Sprintf("%d distinct points", distinctPoints(c)))
			continue
		}
		agg.AddBuilding(p.building(ref, tags.FromOSM(w.Tags), c, features.NumericID(int64(w.ID))))
	}

	for i, r := range b.buildingRelations {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Relation(int64(r.ID))
		for _, ring := range p.assembler.Assemble(r) {
			p.ringCount.Add(1)
			if ring.Role == rings.RoleInner {
				p.report(diag.BuildingInnerRing, ref, ring.ID())
				continue
			}
			c, ok := p.polygon(ref, ring.Nodes, diag.OpenRing)
			if !ok {
				continue
			}
			agg.AddBuilding(p.building(ref, ring.Tags, c, features.RingID(ring.ID())))
		}
	}
	return agg, nil
}

func (p *passes) highways(ctx context.Context, b *buckets) (*features.Aggregator, error) {
	agg := features.NewAggregator()
	d := p.extractor.deriver

	for i, w := range b.highways {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Way(int64(w.ID))
		c, ok := p.polyline(ref, w.Nodes.NodeIDs())
		if !ok {
			continue
		}
		t := tags.FromOSM(w.Tags)
		agg.AddHighway(features.Linear{
			Coords:  c,
			Surface: d.HighwaySurface(ref, t),
			Type:    t.Value("highway"),
			Layer:   d.Layer(ref, t),
			OSMID:   features.NumericID(int64(w.ID)),
		})
	}
	return agg, nil
}

func (p *passes) waterways(ctx context.Context, b *buckets) (*features.Aggregator, error) {
	agg := features.NewAggregator()
	d := p.extractor.deriver

	for i, w := range b.waterways {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Way(int64(w.ID))
		c, ok := p.polyline(ref, w.Nodes.NodeIDs())
		if !ok {
			continue
		}
		t := tags.FromOSM(w.Tags)
		agg.AddWaterway(features.Linear{
			Coords:  c,
			Surface: derive.WaterwaySurface,
			Type:    t.Value("waterway"),
			Layer:   d.Layer(ref, t),
			OSMID:   features.NumericID(int64(w.ID)),
		})
	}
	return agg, nil
}

// decorations builds barrier lines, then decoration points
func (p *passes) decorations(ctx context.Context, b *buckets) (*features.Aggregator, error) {
	agg := features.NewAggregator()
	d := p.extractor.deriver

	for i, w := range b.barriers {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Way(int64(w.ID))
		c, ok := p.polyline(ref, w.Nodes.NodeIDs())
		if !ok {
			continue
		}
		agg.AddDecoration(features.Decoration{
			Coords: c,
			Kind:   d.BarrierKind(ref, tags.FromOSM(w.Tags)),
			OSMID:  features.NumericID(int64(w.ID)),
		})
	}

	for i, n := range b.decorationNodes {
		if err := checkCtx(ctx, i); err != nil {
			return nil, err
		}
		ref := diag.Node(int64(n.ID))
		kind, ok := d.DecorationKind(ref, tags.FromOSM(n.Tags))
		if !ok {
			continue
		}
		pt, _ := p.table.Get(n.ID)
		agg.AddDecoration(features.Decoration{
			Coords: features.Coords{X: []int{pt.X}, Y: []int{pt.Y}},
			Kind:   kind,
			Point:  true,
			OSMID:  features.NumericID(int64(n.ID)),
		})
	}
	return agg, nil
}
