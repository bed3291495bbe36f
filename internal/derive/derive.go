// Package derive computes per-feature attributes from tags: building height,
// render layer, decoration kind, building material and road surface.
package derive

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/style"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// WaterwaySurface is the surface of every waterway
const WaterwaySurface = "water"

// DefaultHighwaySurface is used when neither highway nor surface is in the vocabulary
const DefaultHighwaySurface = "highway"

var leadingNumber = regexp.MustCompile(`^\s*([0-9]+(?:[.,][0-9]+)?)`)

// Deriver computes attributes, reporting fallbacks and parse failures
type Deriver struct {
	style  *style.Style
	report diag.Reporter
}

// New creates a Deriver. A nil reporter discards diagnostics.
func New(s *style.Style, r diag.Reporter) *Deriver {
	if r == nil {
		r = diag.Discard
	}
	return &Deriver{style: s, report: r}
}

// Height estimates a building height in blocks, always within [1, style.MaxHeight]
func (d *Deriver) Height(ref diag.Ref, t tags.Tags) int {
	for _, key := range []string{"height", "building:height"} {
		raw, ok := t.Get(key)
		if !ok {
			continue
		}
		if h, ok := ParseHeight(raw); ok {
			return clampHeight(h)
		}
		d.report.Report(diag.Diagnostic{Reason: diag.BadHeight, Element: ref, Detail: key + "=" + raw})
	}

	levels := d.levels(ref, t, "building:levels") + d.levels(ref, t, "roof:levels")
	if levels > 0 {
		return clampHeight(d.style.LevelHeight() * levels)
	}

	if h, ok := d.style.BuildingHeight(t.Value("building")); ok && t.Has("building") {
		return clampHeight(h)
	}
	if h, ok := d.style.TowerHeight(t.Value("tower:type")); ok && t.Has("tower:type") {
		return clampHeight(h)
	}
	return clampHeight(d.style.DefaultHeight())
}

func (d *Deriver) levels(ref diag.Ref, t tags.Tags, key string) int {
	raw, ok := t.Get(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		d.report.Report(diag.Diagnostic{Reason: diag.BadLevels, Element: ref, Detail: key + "=" + raw})
		return 0
	}
	return n
}

// ParseHeight reads the leading number of a height value such as "12.5 m",
// rounded to the nearest integer.
func ParseHeight(raw string) (int, bool) {
	m := leadingNumber.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

func clampHeight(h int) int {
	if h < 1 {
		return 1
	}
	if h > style.MaxHeight {
		return style.MaxHeight
	}
	return h
}

// Layer resolves the render layer of a highway or waterway.
//
// A tunnel that is not exempt puts the feature at -1 unless an explicit
// non-positive layer is given; an explicit positive layer becomes 0.
func (d *Deriver) Layer(ref diag.Ref, t tags.Tags) int {
	raw, hasLayer := t.Get("layer")
	layer, parsed := 0, false
	if hasLayer {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			layer, parsed = n, true
		} else {
			d.report.Report(diag.Diagnostic{Reason: diag.BadLayer, Element: ref, Detail: "layer=" + raw})
		}
	}

	tunnel, inTunnel := t.Get("tunnel")
	if !inTunnel || d.style.TunnelExempt(tunnel) {
		return layer
	}
	switch {
	case !parsed:
		return -1
	case layer > 0:
		return 0
	default:
		return layer
	}
}

// DecorationKind types a decoration node by the decoration rules in order.
// ok is false when the node is dropped.
func (d *Deriver) DecorationKind(ref diag.Ref, t tags.Tags) (string, bool) {
	for _, rule := range d.style.DecorationRules() {
		value, ok := t.Get(rule.Key)
		if !ok {
			continue
		}
		if kind, ok := d.applyDecoration(ref, rule, value); ok {
			return kind, true
		}
		if rule.Strict {
			d.report.Report(diag.Diagnostic{Reason: diag.UnknownDecoration, Element: ref, Detail: rule.Key + "=" + value})
			return "", false
		}
	}
	d.report.Report(diag.Diagnostic{Reason: diag.UnknownDecoration, Element: ref, Detail: t.String()})
	return "", false
}

// BarrierKind types a barrier way. Barrier ways always yield a kind.
func (d *Deriver) BarrierKind(ref diag.Ref, t tags.Tags) string {
	rule := style.DecorationRule{Key: "barrier", Fallback: "barrier"}
	for _, r := range d.style.DecorationRules() {
		if r.Key == "barrier" {
			rule = r
			break
		}
	}
	if rule.Fallback == "" {
		rule.Fallback = "barrier"
	}
	kind, _ := d.applyDecoration(ref, rule, t.Value("barrier"))
	return kind
}

func (d *Deriver) applyDecoration(ref diag.Ref, rule style.DecorationRule, value string) (string, bool) {
	if d.style.IsDecoration(value) {
		return value, true
	}
	if rule.Fallback != "" {
		d.report.Report(diag.Diagnostic{Reason: diag.DefaultBarrier, Element: ref, Detail: rule.Key + "=" + value})
		return rule.Fallback, true
	}
	return "", false
}

// Material returns the building material when it is one the output knows
func (d *Deriver) Material(ref diag.Ref, t tags.Tags) (string, bool) {
	raw, ok := t.Get("building:material")
	if !ok {
		return "", false
	}
	if d.style.IsMaterial(raw) {
		return raw, true
	}
	d.report.Report(diag.Diagnostic{Reason: diag.UnknownMaterial, Element: ref, Detail: "building:material=" + raw})
	return "", false
}

// HighwaySurface picks the highway value, then the surface tag, then the generic default
func (d *Deriver) HighwaySurface(ref diag.Ref, t tags.Tags) string {
	if hw := t.Value("highway"); d.style.IsSurface(hw) {
		return hw
	}
	if s, ok := t.Get("surface"); ok && d.style.IsSurface(s) {
		return s
	}
	d.report.Report(diag.Diagnostic{Reason: diag.DefaultHighway, Element: ref, Detail: "highway=" + t.Value("highway")})
	return DefaultHighwaySurface
}
