package rings

import (
	"fmt"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osm2mt-go/internal/diag"
)

// stitcher accumulates ways of one role into an open sequence and
// collects the rings it closes.
type stitcher struct {
	assembler *Assembler
	ref       diag.Ref
	role      Role

	seq    []osm.NodeID
	closed [][]osm.NodeID
}

func (s *stitcher) add(way *osm.Way) {
	nodes := way.Nodes.NodeIDs()
	if len(nodes) < 2 {
		s.assembler.report.Report(diag.Diagnostic{
			Reason:  diag.TooFewNodes,
			Element: s.ref,
			Detail:  fmt.Sprintf("way/%d has %d nodes", way.ID, len(nodes)),
		})
		return
	}

	if !s.merge(nodes) {
		s.assembler.report.Report(diag.Diagnostic{
			Reason:  diag.UnconnectedWay,
			Element: s.ref,
			Detail:  fmt.Sprintf("%s way/%d does not connect", s.role, way.ID),
		})
		if s.assembler.policy == PolicyReset {
			s.seq = nil
		}
		return
	}

	if s.seq[0] == s.seq[len(s.seq)-1] {
		s.emit()
	}
}

// merge joins nodes onto the open sequence, returning false when no end matches
func (s *stitcher) merge(nodes []osm.NodeID) bool {
	if len(s.seq) == 0 {
		s.seq = append([]osm.NodeID(nil), nodes...)
		return true
	}

	first, last := s.seq[0], s.seq[len(s.seq)-1]
	wFirst, wLast := nodes[0], nodes[len(nodes)-1]

	// A way touching both ends closes the ring. Append it so the ring
	// keeps the start of the sequence.
	if last == wFirst && wLast == first {
		s.seq = append(s.seq, nodes[1:]...)
		return true
	}
	if last == wLast && wFirst == first {
		s.seq = append(s.seq, reversed(nodes[:len(nodes)-1])...)
		return true
	}

	switch {
	case wLast == first:
		s.seq = append(append([]osm.NodeID(nil), nodes[:len(nodes)-1]...), s.seq...)
	case wFirst == first:
		s.seq = append(reversed(nodes[1:]), s.seq...)
	case last == wFirst:
		s.seq = append(s.seq, nodes[1:]...)
	case last == wLast:
		s.seq = append(s.seq, reversed(nodes[:len(nodes)-1])...)
	default:
		return false
	}
	return true
}

func (s *stitcher) emit() {
	ring := s.seq
	s.seq = nil
	if DistinctNodes(ring) < 3 {
		s.assembler.report.Report(diag.Diagnostic{
			Reason:  diag.DegenerateRing,
			Element: s.ref,
			Detail:  fmt.Sprintf("%s ring with %d distinct nodes", s.role, DistinctNodes(ring)),
		})
		return
	}
	s.closed = append(s.closed, ring)
}

func (s *stitcher) finish() {
	if len(s.seq) == 0 {
		return
	}
	s.assembler.report.Report(diag.Diagnostic{
		Reason:  diag.OpenRing,
		Element: s.ref,
		Detail:  fmt.Sprintf("%s sequence of %d nodes left open", s.role, len(s.seq)),
	})
	s.seq = nil
}

// reversed returns a reversed copy
func reversed(nodes []osm.NodeID) []osm.NodeID {
	out := make([]osm.NodeID, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}
