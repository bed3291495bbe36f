package classify

import (
	"github.com/wegman-software/osm2mt-go/internal/style"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// Override can replace the built-in surface result for an area.
// ok is false when the built-in result should be kept.
type Override interface {
	Surface(t tags.Tags) (a style.Assignment, ok bool)
}

// SurfaceClassifier assigns (surface, level) to areas
type SurfaceClassifier struct {
	style    *style.Style
	override Override
}

// NewSurfaceClassifier creates a classifier. override may be nil.
func NewSurfaceClassifier(s *style.Style, override Override) *SurfaceClassifier {
	return &SurfaceClassifier{style: s, override: override}
}

// Classify returns the surface assignment for an area's tags.
// ok is false when no rule produced a surface.
func (c *SurfaceClassifier) Classify(t tags.Tags) (style.Assignment, bool) {
	if c.override != nil {
		if a, ok := c.override.Surface(t); ok && a.Surface != "" && a.Level.Valid() {
			return a, true
		}
	}
	return c.Builtin(t)
}

// Builtin runs the rule list without consulting the override
func (c *SurfaceClassifier) Builtin(t tags.Tags) (style.Assignment, bool) {
	for _, rule := range c.style.SurfaceRules() {
		if a, ok := c.apply(rule, t); ok {
			return a, true
		}
	}
	return style.Assignment{}, false
}

func (c *SurfaceClassifier) apply(rule style.SurfaceRule, t tags.Tags) (style.Assignment, bool) {
	value, present := t.Get(rule.Key)
	if !present {
		return style.Assignment{}, false
	}

	if a, ok := rule.Values[value]; ok {
		return a, true
	}

	if rule.Vocabulary && c.style.IsSurface(value) {
		level := rule.VocabularyLevel
		if rule.Partition {
			level = c.style.PartitionLevel(value)
		}
		return style.Assignment{Surface: value, Level: level}, true
	}

	if rule.Fallback != nil {
		return *rule.Fallback, true
	}
	return style.Assignment{}, false
}
