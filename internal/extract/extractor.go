// Package extract runs the three-pass transform from a Dataset to a
// feature Bundle: project nodes, route elements, build features per bucket.
package extract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osm2mt-go/internal/classify"
	"github.com/wegman-software/osm2mt-go/internal/derive"
	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/logger"
	"github.com/wegman-software/osm2mt-go/internal/osmdata"
	"github.com/wegman-software/osm2mt-go/internal/proj"
	"github.com/wegman-software/osm2mt-go/internal/rings"
	"github.com/wegman-software/osm2mt-go/internal/style"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// checkEvery is how many elements are processed between cancellation checks
const checkEvery = 1024

// Options configures an Extractor
type Options struct {
	Style    *style.Style      // nil uses the built-in style
	SRID     int               // 0 uses proj.DefaultSRID
	Workers  int               // >1 runs the bucket passes concurrently
	Policy   rings.Policy      // ring mismatch policy, "" keeps
	Override classify.Override // optional surface override
	Reporter diag.Reporter     // nil discards diagnostics
}

// Extractor turns a Dataset into a feature Bundle
type Extractor struct {
	tr       *proj.Transformer
	workers  int
	policy   rings.Policy
	router   *classify.Router
	surfaces *classify.SurfaceClassifier
	deriver  *derive.Deriver
	report   diag.Reporter
}

// Stats holds extraction statistics
type Stats struct {
	Nodes     int
	Ways      int
	Relations int

	Projections int // projection evaluations, one per unique node id

	AreaWays          int
	BuildingWays      int
	Highways          int
	Waterways         int
	Barriers          int
	DecorationNodes   int
	AreaRelations     int
	BuildingRelations int

	Rings    int
	Features features.Counts
	BBox     features.BBox
	Duration time.Duration
}

// New creates an Extractor
func New(opts Options) (*Extractor, error) {
	s := opts.Style
	if s == nil {
		s = style.Default()
	}
	srid := opts.SRID
	if srid == 0 {
		srid = proj.DefaultSRID
	}
	tr, err := proj.NewTransformer(srid)
	if err != nil {
		return nil, err
	}
	report := opts.Reporter
	if report == nil {
		report = diag.Discard
	}
	policy := opts.Policy
	if policy == "" {
		policy = rings.PolicyKeep
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Extractor{
		tr:       tr,
		workers:  workers,
		policy:   policy,
		router:   classify.NewRouter(s),
		surfaces: classify.NewSurfaceClassifier(s, opts.Override),
		deriver:  derive.New(s, report),
		report:   report,
	}, nil
}

// buckets is the routing result of pass 2, each list in input order
type buckets struct {
	areas             []*osm.Way
	buildings         []*osm.Way
	highways          []*osm.Way
	waterways         []*osm.Way
	barriers          []*osm.Way
	decorationNodes   []*osm.Node
	areaRelations     []*osm.Relation
	buildingRelations []*osm.Relation
}

// Run extracts features from ds. Diagnostics never fail a run; the only
// errors are cancellation of ctx.
func (e *Extractor) Run(ctx context.Context, ds *osmdata.Dataset) (*features.Bundle, *Stats, error) {
	log := logger.Get()
	start := time.Now()
	stats := &Stats{Nodes: len(ds.Nodes), Ways: len(ds.Ways), Relations: len(ds.Relations)}

	for _, d := range ds.Skipped {
		e.report.Report(d)
	}

	// Pass 1: project every node before anything references it
	log.Debug("Pass 1: projecting nodes", zap.Int("nodes", len(ds.Nodes)))
	table, nodes, err := e.projectNodes(ctx, ds.Nodes)
	if err != nil {
		return nil, nil, err
	}
	stats.Projections = table.Evaluations()

	// Pass 2: route ways and relations
	log.Debug("Pass 2: routing ways and relations",
		zap.Int("ways", len(ds.Ways)),
		zap.Int("relations", len(ds.Relations)))
	b, err := e.route(ctx, ds)
	if err != nil {
		return nil, nil, err
	}
	b.decorationNodes = nodes

	stats.AreaWays = len(b.areas)
	stats.BuildingWays = len(b.buildings)
	stats.Highways = len(b.highways)
	stats.Waterways = len(b.waterways)
	stats.Barriers = len(b.barriers)
	stats.DecorationNodes = len(b.decorationNodes)
	stats.AreaRelations = len(b.areaRelations)
	stats.BuildingRelations = len(b.buildingRelations)

	// Pass 3: independent bucket passes
	p := &passes{
		extractor: e,
		table:     table,
		assembler: rings.NewAssembler(osmdata.NewWayIndex(ds.Ways), e.router.QualifiesAsArea, e.policy, e.report),
	}
	order := []func(context.Context, *buckets) (*features.Aggregator, error){
		p.areas,
		p.buildings,
		p.highways,
		p.waterways,
		p.decorations,
	}
	results := make([]*features.Aggregator, len(order))

	log.Debug("Pass 3: building features", zap.Int("workers", e.workers))
	if e.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for i, pass := range order {
			i, pass := i, pass
			g.Go(func() error {
				agg, err := pass(gctx, b)
				if err != nil {
					return err
				}
				results[i] = agg
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i, pass := range order {
			agg, err := pass(ctx, b)
			if err != nil {
				return nil, nil, err
			}
			results[i] = agg
		}
	}

	merged := features.NewAggregator()
	for _, agg := range results {
		merged.Merge(agg)
	}
	bundle := merged.Bundle()

	stats.Rings = p.rings()
	stats.Features = bundle.Counts()
	stats.BBox = merged.BBox()
	stats.Duration = time.Since(start)
	return bundle, stats, nil
}

// projectNodes fills the coordinate table and collects decoration candidates
func (e *Extractor) projectNodes(ctx context.Context, nodes []*osm.Node) (*proj.Table, []*osm.Node, error) {
	table := proj.NewTable(e.tr, len(nodes))
	var candidates []*osm.Node

	for i, n := range nodes {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		table.Put(n.ID, n.Lon, n.Lat)

		t := tags.FromOSM(n.Tags)
		if classify.IsBoundary(t) {
			e.report.Report(diag.Diagnostic{Reason: diag.BoundaryDropped, Element: diag.Node(int64(n.ID))})
			continue
		}
		if e.router.DecorationCandidate(t) {
			candidates = append(candidates, n)
		}
	}
	return table, candidates, nil
}

// route assigns ways and relations to buckets
func (e *Extractor) route(ctx context.Context, ds *osmdata.Dataset) (*buckets, error) {
	b := &buckets{}

	for i, w := range ds.Ways {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ref := diag.Way(int64(w.ID))
		t := tags.FromOSM(w.Tags)
		switch {
		case t.Empty():
			e.report.Report(diag.Diagnostic{Reason: diag.UntaggedWay, Element: ref})
			continue
		case classify.IsBoundary(t):
			e.report.Report(diag.Diagnostic{Reason: diag.BoundaryDropped, Element: ref})
			continue
		}

		switch e.router.RouteWay(t) {
		case classify.BucketArea:
			b.areas = append(b.areas, w)
		case classify.BucketHighway:
			b.highways = append(b.highways, w)
		case classify.BucketWaterway:
			b.waterways = append(b.waterways, w)
		case classify.BucketBuilding:
			b.buildings = append(b.buildings, w)
		case classify.BucketBarrier:
			b.barriers = append(b.barriers, w)
		}
	}

	for i, r := range ds.Relations {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ref := diag.Relation(int64(r.ID))
		t := tags.FromOSM(r.Tags)
		switch {
		case t.Empty():
			e.report.Report(diag.Diagnostic{Reason: diag.RelationNoTags, Element: ref})
			continue
		case classify.IsBoundary(t):
			e.report.Report(diag.Diagnostic{Reason: diag.BoundaryDropped, Element: ref})
			continue
		case len(r.Members) == 0:
			e.report.Report(diag.Diagnostic{Reason: diag.RelationNoMembers, Element: ref})
			continue
		}

		switch e.router.RouteRelation(t) {
		case classify.BucketArea:
			b.areaRelations = append(b.areaRelations, r)
		case classify.BucketBuilding:
			b.buildingRelations = append(b.buildingRelations, r)
		default:
			e.report.Report(diag.Diagnostic{
				Reason:  diag.RelationUnroutable,
				Element: ref,
				Detail:  fmt.Sprintf("tags %s", t),
			})
		}
	}
	return b, nil
}
