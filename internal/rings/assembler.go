// Package rings reconstructs closed polygon rings from the member ways of a
// multipolygon relation.
package rings

import (
	"fmt"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// Role of a ring within its relation
type Role string

const (
	RoleOuter Role = "outer"
	RoleInner Role = "inner"
)

// Policy decides what happens to the open sequence when a way does not connect
type Policy string

const (
	// PolicyKeep discards the way and keeps stitching onto the sequence
	PolicyKeep Policy = "keep"
	// PolicyReset discards the way and the sequence accumulated so far
	PolicyReset Policy = "reset"
)

// ParsePolicy parses a policy name
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyKeep, PolicyReset:
		return Policy(s), nil
	case "":
		return PolicyKeep, nil
	}
	return "", fmt.Errorf("unknown ring mismatch policy %q (want keep or reset)", s)
}

// Ring is a closed node sequence, first == last
type Ring struct {
	Role     Role
	Relation osm.RelationID
	Index    int // 1-based within the role
	Nodes    []osm.NodeID
	Tags     tags.Tags // relation tags for outer rings, empty for inner rings
}

// ID returns the source id written to the output, e.g. "123.outer#1"
func (r Ring) ID() string {
	return fmt.Sprintf("%d.%s#%d", r.Relation, r.Role, r.Index)
}

// WayLookup resolves member way references
type WayLookup interface {
	Way(id osm.WayID) (*osm.Way, bool)
}

// Assembler stitches relation members into rings
type Assembler struct {
	ways   WayLookup
	isArea func(tags.Tags) bool
	policy Policy
	report diag.Reporter
}

// NewAssembler creates an Assembler. isArea tells whether an inner member
// way becomes an area on its own and must not be used as a hole.
func NewAssembler(ways WayLookup, isArea func(tags.Tags) bool, policy Policy, r diag.Reporter) *Assembler {
	if r == nil {
		r = diag.Discard
	}
	if policy == "" {
		policy = PolicyKeep
	}
	if isArea == nil {
		isArea = func(tags.Tags) bool { return false }
	}
	return &Assembler{ways: ways, isArea: isArea, policy: policy, report: r}
}

// Assemble returns the outer rings followed by the inner rings of rel,
// each group in the order the rings closed.
func (a *Assembler) Assemble(rel *osm.Relation) []Ring {
	ref := diag.Relation(int64(rel.ID))
	uniform := isUniform(rel.Members)

	outer := &stitcher{assembler: a, ref: ref, role: RoleOuter}
	inner := &stitcher{assembler: a, ref: ref, role: RoleInner}

	for _, m := range rel.Members {
		if m.Type != osm.TypeWay {
			a.report.Report(diag.Diagnostic{
				Reason:  diag.NonWayMember,
				Element: ref,
				Detail:  fmt.Sprintf("%s/%d role=%q", m.Type, m.Ref, m.Role),
			})
			continue
		}
		way, ok := a.ways.Way(osm.WayID(m.Ref))
		if !ok {
			a.report.Report(diag.Diagnostic{
				Reason:  diag.UnresolvedWay,
				Element: ref,
				Detail:  fmt.Sprintf("way/%d", m.Ref),
			})
			continue
		}

		if !uniform && m.Role == string(RoleInner) {
			if a.isArea(tags.FromOSM(way.Tags)) {
				continue
			}
			inner.add(way)
			continue
		}
		outer.add(way)
	}
	outer.finish()
	inner.finish()

	relTags := tags.FromOSM(rel.Tags)
	result := make([]Ring, 0, len(outer.closed)+len(inner.closed))
	for i, nodes := range outer.closed {
		result = append(result, Ring{Role: RoleOuter, Relation: rel.ID, Index: i + 1, Nodes: nodes, Tags: relTags})
	}
	for i, nodes := range inner.closed {
		result = append(result, Ring{Role: RoleInner, Relation: rel.ID, Index: i + 1, Nodes: nodes})
	}
	return result
}

// isUniform reports whether every member is a way and none is inner
func isUniform(members osm.Members) bool {
	for _, m := range members {
		if m.Type != osm.TypeWay || m.Role == string(RoleInner) {
			return false
		}
	}
	return true
}

// DistinctNodes counts the unique node ids of a sequence
func DistinctNodes(nodes []osm.NodeID) int {
	seen := make(map[osm.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		seen[n] = struct{}{}
	}
	return len(seen)
}
