package proj

import (
	"github.com/paulmach/osm"
)

// Point is a projected coordinate rounded to whole units
type Point struct {
	X, Y int
}

// Table memoizes the projected position of every node id.
//
// It is filled by a single goroutine before any lookup; once filling is
// done it is read-only and safe for concurrent Get and Resolve calls.
type Table struct {
	tr          *Transformer
	points      map[osm.NodeID]Point
	evaluations int
}

// NewTable creates an empty table projecting with tr
func NewTable(tr *Transformer, sizeHint int) *Table {
	return &Table{
		tr:     tr,
		points: make(map[osm.NodeID]Point, sizeHint),
	}
}

// Put projects and stores a node. A node id already present keeps its
// first position and is not projected again.
func (t *Table) Put(id osm.NodeID, lon, lat float64) (Point, bool) {
	if p, ok := t.points[id]; ok {
		return p, false
	}
	p := t.tr.Project(lon, lat)
	t.evaluations++
	t.points[id] = p
	return p, true
}

// Get returns the projected position of a node
func (t *Table) Get(id osm.NodeID) (Point, bool) {
	p, ok := t.points[id]
	return p, ok
}

// Resolve maps a node sequence to parallel x and y slices.
// On the first unknown node it returns that id and ok=false.
func (t *Table) Resolve(ids []osm.NodeID) (xs, ys []int, missing osm.NodeID, ok bool) {
	xs = make([]int, len(ids))
	ys = make([]int, len(ids))
	for i, id := range ids {
		p, found := t.points[id]
		if !found {
			return nil, nil, id, false
		}
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys, 0, true
}

// Len returns the number of stored nodes
func (t *Table) Len() int { return len(t.points) }

// Evaluations returns how many times the projection was computed
func (t *Table) Evaluations() int { return t.evaluations }
