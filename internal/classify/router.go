// Package classify routes raw elements to feature buckets and assigns area
// surfaces and levels from the style tables.
package classify

import (
	"github.com/wegman-software/osm2mt-go/internal/style"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// Bucket is the collection an element is processed into
type Bucket int

const (
	BucketNone Bucket = iota
	BucketArea
	BucketHighway
	BucketWaterway
	BucketBuilding
	BucketBarrier
)

func (b Bucket) String() string {
	switch b {
	case BucketArea:
		return "area"
	case BucketHighway:
		return "highway"
	case BucketWaterway:
		return "waterway"
	case BucketBuilding:
		return "building"
	case BucketBarrier:
		return "barrier"
	default:
		return "none"
	}
}

// Router decides which bucket an element belongs to
type Router struct {
	style *style.Style
}

// NewRouter creates a router over the given style
func NewRouter(s *style.Style) *Router {
	return &Router{style: s}
}

// IsBoundary reports whether the element carries a boundary tag
func IsBoundary(t tags.Tags) bool {
	return t.Has("boundary")
}

// RouteWay returns the bucket for a tagged way by first match.
// Untagged and boundary ways yield BucketNone.
func (r *Router) RouteWay(t tags.Tags) Bucket {
	if t.Empty() || IsBoundary(t) {
		return BucketNone
	}
	switch {
	case t.Has("area"):
		return BucketArea
	case t.Has("highway"):
		return BucketHighway
	case t.Has("waterway") && r.style.IsWaterway(t.Value("waterway")):
		return BucketWaterway
	case t.HasAny("building", "building:part"):
		return BucketBuilding
	case t.Has("barrier"):
		return BucketBarrier
	default:
		return BucketArea
	}
}

// QualifiesAsArea reports whether a way would become an area by itself
func (r *Router) QualifiesAsArea(t tags.Tags) bool {
	return r.RouteWay(t) == BucketArea
}

// RouteRelation returns BucketArea, BucketBuilding or BucketNone.
// The area table is consulted over all tags before the building table,
// so the result does not depend on tag order.
func (r *Router) RouteRelation(t tags.Tags) Bucket {
	if t.Empty() || IsBoundary(t) {
		return BucketNone
	}
	if r.style.AreaRelation(t) {
		return BucketArea
	}
	if r.style.BuildingRelation(t) {
		return BucketBuilding
	}
	return BucketNone
}

// DecorationCandidate reports whether a node may become a decoration
func (r *Router) DecorationCandidate(t tags.Tags) bool {
	if IsBoundary(t) {
		return false
	}
	return t.HasAny("natural", "amenity", "barrier")
}
