// Package osmdata reads OSM input (Overpass JSON, OSM XML, PBF) into a fully
// materialized, immutable Dataset.
package osmdata

import (
	"github.com/paulmach/osm"

	"github.com/wegman-software/osm2mt-go/internal/diag"
)

// Dataset holds every element of the input, in input order
type Dataset struct {
	Nodes     []*osm.Node
	Ways      []*osm.Way
	Relations []*osm.Relation

	// Skipped lists elements the reader could not represent
	Skipped []diag.Diagnostic
}

// Len returns the number of decoded elements
func (d *Dataset) Len() int {
	return len(d.Nodes) + len(d.Ways) + len(d.Relations)
}

// Add appends an element of any supported type.
// It returns false for objects that are not nodes, ways or relations.
func (d *Dataset) Add(o osm.Object) bool {
	switch e := o.(type) {
	case *osm.Node:
		d.Nodes = append(d.Nodes, e)
	case *osm.Way:
		d.Ways = append(d.Ways, e)
	case *osm.Relation:
		d.Relations = append(d.Relations, e)
	default:
		return false
	}
	return true
}

// WayIndex resolves way ids. When an id occurs more than once the first
// occurrence wins.
type WayIndex map[osm.WayID]*osm.Way

// NewWayIndex indexes the ways of a dataset
func NewWayIndex(ways []*osm.Way) WayIndex {
	idx := make(WayIndex, len(ways))
	for _, w := range ways {
		if _, ok := idx[w.ID]; !ok {
			idx[w.ID] = w
		}
	}
	return idx
}

// Way looks up a way by id
func (idx WayIndex) Way(id osm.WayID) (*osm.Way, bool) {
	w, ok := idx[id]
	return w, ok
}
