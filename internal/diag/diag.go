// Package diag carries per-element diagnostics out of the extraction core.
//
// Nothing reported here aborts a run. Every dropped element or feature is
// explained by exactly one Diagnostic naming its Reason.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category groups reasons by how the element failed
type Category string

const (
	StructuralSkip     Category = "structural_skip"
	ClassificationMiss Category = "classification_miss"
	GeometryIncomplete Category = "geometry_incomplete"
	ValueParseFailure  Category = "value_parse_failure"
)

// Reason names one specific failure
type Reason string

const (
	// structural
	UnknownType        Reason = "unknown_type"
	MalformedElement   Reason = "malformed_element"
	BoundaryDropped    Reason = "boundary_dropped"
	UntaggedWay        Reason = "untagged_way"
	RelationNoTags     Reason = "relation_missing_tags"
	RelationNoMembers  Reason = "relation_missing_members"
	RelationUnroutable Reason = "relation_unroutable"
	UnresolvedNode     Reason = "unresolved_node"
	UnresolvedWay      Reason = "unresolved_way"
	NonWayMember       Reason = "non_way_member"

	// classification
	UndefinedSurface   Reason = "undefined_surface"
	UnknownDecoration  Reason = "unknown_decoration"
	DefaultBarrier     Reason = "default_barrier"
	DefaultHighway     Reason = "default_highway"
	UnknownMaterial    Reason = "unknown_material"
	BuildingInnerRing  Reason = "building_inner_ring"

	// geometry
	OpenRing       Reason = "open_ring"
	UnconnectedWay Reason = "unconnected_way"
	DegenerateRing Reason = "degenerate_ring"
	TooFewNodes    Reason = "too_few_nodes"
	UnclosedArea   Reason = "unclosed_area"

	// value parsing
	BadLayer  Reason = "bad_layer"
	BadLevels Reason = "bad_levels"
	BadHeight Reason = "bad_height"
)

type reasonInfo struct {
	category Category
	level    zapcore.Level
}

var reasons = map[Reason]reasonInfo{
	UnknownType:        {StructuralSkip, zapcore.WarnLevel},
	MalformedElement:   {StructuralSkip, zapcore.WarnLevel},
	BoundaryDropped:    {StructuralSkip, zapcore.DebugLevel},
	UntaggedWay:        {StructuralSkip, zapcore.DebugLevel},
	RelationNoTags:     {StructuralSkip, zapcore.WarnLevel},
	RelationNoMembers:  {StructuralSkip, zapcore.WarnLevel},
	RelationUnroutable: {StructuralSkip, zapcore.InfoLevel},
	UnresolvedNode:     {StructuralSkip, zapcore.WarnLevel},
	UnresolvedWay:      {StructuralSkip, zapcore.WarnLevel},
	NonWayMember:       {StructuralSkip, zapcore.DebugLevel},

	UndefinedSurface:  {ClassificationMiss, zapcore.InfoLevel},
	UnknownDecoration: {ClassificationMiss, zapcore.InfoLevel},
	DefaultBarrier:    {ClassificationMiss, zapcore.DebugLevel},
	DefaultHighway:    {ClassificationMiss, zapcore.DebugLevel},
	UnknownMaterial:   {ClassificationMiss, zapcore.DebugLevel},
	BuildingInnerRing: {ClassificationMiss, zapcore.DebugLevel},

	OpenRing:       {GeometryIncomplete, zapcore.WarnLevel},
	UnconnectedWay: {GeometryIncomplete, zapcore.WarnLevel},
	DegenerateRing: {GeometryIncomplete, zapcore.WarnLevel},
	TooFewNodes:    {GeometryIncomplete, zapcore.InfoLevel},
	UnclosedArea:   {GeometryIncomplete, zapcore.InfoLevel},

	BadLayer:  {ValueParseFailure, zapcore.DebugLevel},
	BadLevels: {ValueParseFailure, zapcore.DebugLevel},
	BadHeight: {ValueParseFailure, zapcore.DebugLevel},
}

// Category returns the category the reason belongs to
func (r Reason) Category() Category {
	if info, ok := reasons[r]; ok {
		return info.category
	}
	return StructuralSkip
}

// Level returns the log level diagnostics of this reason are written at
func (r Reason) Level() zapcore.Level {
	if info, ok := reasons[r]; ok {
		return info.level
	}
	return zapcore.WarnLevel
}

// Reasons returns every known reason, sorted
func Reasons() []Reason {
	all := make([]Reason, 0, len(reasons))
	for r := range reasons {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Ref identifies the element a diagnostic is about
type Ref struct {
	Type string // "node", "way", "relation" or the raw input type
	ID   int64
}

// Node, Way and Relation build refs for the three element types
func Node(id int64) Ref     { return Ref{Type: "node", ID: id} }
func Way(id int64) Ref      { return Ref{Type: "way", ID: id} }
func Relation(id int64) Ref { return Ref{Type: "relation", ID: id} }

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Type, r.ID)
}

// Diagnostic is one explained omission or fallback
type Diagnostic struct {
	Reason  Reason
	Element Ref
	Detail  string
}

// Reporter receives diagnostics. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Multi fans a diagnostic out to several reporters
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range reporters {
			r.Report(d)
		}
	})
}

// Logger writes diagnostics to a zap logger at the reason's level
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a Logger writing under the "diag" name
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log.Named("diag")}
}

func (l *Logger) Report(d Diagnostic) {
	if ce := l.log.Check(d.Reason.Level(), string(d.Reason)); ce != nil {
		ce.Write(
			zap.String("element", d.Element.String()),
			zap.String("category", string(d.Reason.Category())),
			zap.String("detail", d.Detail),
		)
	}
}

// Counter tallies diagnostics per reason
type Counter struct {
	mu     sync.Mutex
	counts map[Reason]int64
}

// NewCounter creates an empty Counter
func NewCounter() *Counter {
	return &Counter{counts: make(map[Reason]int64)}
}

func (c *Counter) Report(d Diagnostic) {
	c.mu.Lock()
	c.counts[d.Reason]++
	c.mu.Unlock()
}

// Count returns how often reason was reported
func (c *Counter) Count(reason Reason) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[reason]
}

// Snapshot returns a copy of the per-reason counts
func (c *Counter) Snapshot() map[Reason]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Reason]int64, len(c.counts))
	for r, n := range c.counts {
		out[r] = n
	}
	return out
}

// Total returns the number of diagnostics in a category
func (c *Counter) Total(cat Category) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for r, count := range c.counts {
		if r.Category() == cat {
			n += count
		}
	}
	return n
}

// Recorder keeps every diagnostic, in report order. Used by tests.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	r.diags = append(r.diags, d)
	r.mu.Unlock()
}

// All returns the recorded diagnostics
func (r *Recorder) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// Has reports whether reason was recorded for element
func (r *Recorder) Has(reason Reason, element Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.diags {
		if d.Reason == reason && d.Element == element {
			return true
		}
	}
	return false
}

// Count returns how often reason was recorded
func (r *Recorder) Count(reason Reason) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Reason == reason {
			n++
		}
	}
	return n
}
