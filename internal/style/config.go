package style

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Level is the render priority tier of an area
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Levels lists the tiers in output order
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// Valid reports whether l is one of the three tiers
func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// LanduseVegetationLevel is the tier for landuse=grass|meadow|forest areas.
// These are classified as surface "natural", which always sits low.
const LanduseVegetationLevel = LevelLow

// Config represents the vocabulary and rule tables driving classification
type Config struct {
	// Surfaces is the surface vocabulary understood downstream
	Surfaces []string `yaml:"surfaces,omitempty"`
	// SurfaceLevels partitions the vocabulary for explicit surface tags
	SurfaceLevels *SurfaceLevels `yaml:"surface_levels,omitempty"`
	// SurfaceRules are tried in order until one yields a result
	SurfaceRules []SurfaceRule `yaml:"surface_rules,omitempty"`

	// Decorations is the decoration vocabulary
	Decorations []string `yaml:"decorations,omitempty"`
	// DecorationRules are tried in order for decoration nodes
	DecorationRules []DecorationRule `yaml:"decoration_rules,omitempty"`

	// AreaRelations routes relations to the area bucket.
	// An empty value list matches any value.
	AreaRelations TagTable `yaml:"area_relations,omitempty"`
	// BuildingRelations routes relations to the building bucket
	BuildingRelations TagTable `yaml:"building_relations,omitempty"`

	// WaterwayTypes lists waterway values routed as waterways
	WaterwayTypes []string `yaml:"waterway_types,omitempty"`
	// TunnelExemptions lists tunnel values that keep the surface layer
	TunnelExemptions []string `yaml:"tunnel_exemptions,omitempty"`

	// BuildingHeights maps building values to a height guess
	BuildingHeights map[string]int `yaml:"building_heights,omitempty"`
	// TowerHeights maps tower:type values to a height guess
	TowerHeights map[string]int `yaml:"tower_heights,omitempty"`
	// DefaultHeight is used when nothing else applies
	DefaultHeight int `yaml:"default_height,omitempty"`
	// LevelHeight is the height of one storey
	LevelHeight int `yaml:"level_height,omitempty"`

	// Materials lists the building materials understood downstream
	Materials []string `yaml:"materials,omitempty"`
}

// SurfaceLevels assigns levels to explicit surface tag values.
// Values in none of the lists are low.
type SurfaceLevels struct {
	ForcedLow []string `yaml:"forced_low,omitempty"`
	Medium    []string `yaml:"medium,omitempty"`
	High      []string `yaml:"high,omitempty"`
}

// Assignment is a classification result
type Assignment struct {
	Surface string `yaml:"surface"`
	Level   Level  `yaml:"level"`
}

// SurfaceRule classifies areas carrying Key.
//
// Resolution inside a rule: exact Values first, then the vocabulary, then
// Fallback. A rule whose key is absent, or which finds nothing and has no
// fallback, lets the next rule try.
type SurfaceRule struct {
	Key string `yaml:"key"`
	// Values maps exact tag values to a fixed result
	Values map[string]Assignment `yaml:"values,omitempty"`
	// Vocabulary accepts tag values found in the surface vocabulary
	Vocabulary bool `yaml:"vocabulary,omitempty"`
	// VocabularyLevel is the level for vocabulary hits, unless Partition is set
	VocabularyLevel Level `yaml:"vocabulary_level,omitempty"`
	// Partition takes the level of a vocabulary hit from SurfaceLevels
	Partition bool `yaml:"partition,omitempty"`
	// Fallback applies when the key is present but nothing above matched
	Fallback *Assignment `yaml:"fallback,omitempty"`
}

// DecorationRule maps a tag key to a decoration kind
type DecorationRule struct {
	Key string `yaml:"key"`
	// Fallback is the kind for values outside the vocabulary
	Fallback string `yaml:"fallback,omitempty"`
	// Strict drops the element when the value is unknown and there is no fallback
	Strict bool `yaml:"strict,omitempty"`
}

// TagTable maps tag keys to accepted values
type TagTable map[string][]string

// Match reports whether key=value is accepted by the table.
// An empty value list or a "*" entry accepts any value.
func (t TagTable) Match(key, value string) bool {
	values, ok := t[key]
	if !ok {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if v == value || v == "*" {
			return true
		}
	}
	return false
}

// MatchAny reports whether any of the tags is accepted
func (t TagTable) MatchAny(tags map[string]string) bool {
	for k, v := range tags {
		if t.Match(k, v) {
			return true
		}
	}
	return false
}

// LoadConfig loads a style configuration from a YAML file.
// Sections present in the file replace the defaults; absent ones keep them.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the default configuration
func ParseConfig(data []byte) (*Config, error) {
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse style YAML: %w", err)
	}

	cfg := DefaultConfig()
	cfg.overlay(&overlay)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(o *Config) {
	if o.Surfaces != nil {
		c.Surfaces = o.Surfaces
	}
	if o.SurfaceLevels != nil {
		c.SurfaceLevels = o.SurfaceLevels
	}
	if o.SurfaceRules != nil {
		c.SurfaceRules = o.SurfaceRules
	}
	if o.Decorations != nil {
		c.Decorations = o.Decorations
	}
	if o.DecorationRules != nil {
		c.DecorationRules = o.DecorationRules
	}
	if o.AreaRelations != nil {
		c.AreaRelations = o.AreaRelations
	}
	if o.BuildingRelations != nil {
		c.BuildingRelations = o.BuildingRelations
	}
	if o.WaterwayTypes != nil {
		c.WaterwayTypes = o.WaterwayTypes
	}
	if o.TunnelExemptions != nil {
		c.TunnelExemptions = o.TunnelExemptions
	}
	if o.BuildingHeights != nil {
		c.BuildingHeights = o.BuildingHeights
	}
	if o.TowerHeights != nil {
		c.TowerHeights = o.TowerHeights
	}
	if o.DefaultHeight != 0 {
		c.DefaultHeight = o.DefaultHeight
	}
	if o.LevelHeight != 0 {
		c.LevelHeight = o.LevelHeight
	}
	if o.Materials != nil {
		c.Materials = o.Materials
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if len(c.Surfaces) == 0 {
		return fmt.Errorf("surface vocabulary is empty")
	}
	for i, r := range c.SurfaceRules {
		if r.Key == "" {
			return fmt.Errorf("surface rule %d has no key", i)
		}
		if r.Vocabulary && !r.Partition && !r.VocabularyLevel.Valid() {
			return fmt.Errorf("surface rule %q: invalid vocabulary level %q", r.Key, r.VocabularyLevel)
		}
		for v, a := range r.Values {
			if !a.Level.Valid() {
				return fmt.Errorf("surface rule %q value %q: invalid level %q", r.Key, v, a.Level)
			}
		}
		if r.Fallback != nil && !r.Fallback.Level.Valid() {
			return fmt.Errorf("surface rule %q: invalid fallback level %q", r.Key, r.Fallback.Level)
		}
	}
	for i, r := range c.DecorationRules {
		if r.Key == "" {
			return fmt.Errorf("decoration rule %d has no key", i)
		}
	}
	if c.DefaultHeight < 1 || c.DefaultHeight > MaxHeight {
		return fmt.Errorf("default height %d outside [1,%d]", c.DefaultHeight, MaxHeight)
	}
	if c.LevelHeight < 1 {
		return fmt.Errorf("level height must be positive")
	}
	return nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode style YAML: %w", err)
	}
	return data, nil
}
