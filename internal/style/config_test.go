package style

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestTagTableMatch(t *testing.T) {
	table := TagTable{
		"natural":  {"water"},
		"building": {},
		"place":    {"*"},
	}

	tests := []struct {
		key, value string
		want       bool
	}{
		{"natural", "water", true},
		{"natural", "wood", false},
		{"building", "anything", true},
		{"place", "islet", true},
		{"landuse", "forest", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			if got := table.Match(tt.key, tt.value); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	yml := `
materials: [brick, stone]
waterway_types: [river]
`
	cfg, err := ParseConfig([]byte(yml))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.Materials) != 2 || cfg.Materials[1] != "stone" {
		t.Errorf("Materials = %v", cfg.Materials)
	}
	if len(cfg.WaterwayTypes) != 1 {
		t.Errorf("WaterwayTypes = %v", cfg.WaterwayTypes)
	}
	// untouched sections keep their defaults
	if len(cfg.SurfaceRules) != len(DefaultConfig().SurfaceRules) {
		t.Errorf("SurfaceRules replaced unexpectedly: %d rules", len(cfg.SurfaceRules))
	}
	if cfg.DefaultHeight != 1 {
		t.Errorf("DefaultHeight = %d, want 1", cfg.DefaultHeight)
	}
}

func TestParseConfigRejectsBadLevel(t *testing.T) {
	yml := `
surface_rules:
  - key: natural
    fallback: {surface: natural, level: sky}
`
	if _, err := ParseConfig([]byte(yml)); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := DefaultConfig().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "style.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Surfaces) != len(DefaultConfig().Surfaces) {
		t.Errorf("surfaces = %d, want %d", len(cfg.Surfaces), len(DefaultConfig().Surfaces))
	}
	if cfg.SurfaceRules[4].Values["forest"].Level != LanduseVegetationLevel {
		t.Errorf("landuse=forest level = %q", cfg.SurfaceRules[4].Values["forest"].Level)
	}
}

func TestPartitionLevel(t *testing.T) {
	s := Default()

	tests := []struct {
		surface string
		want    Level
	}{
		{"natural", LevelLow},
		{"building_ground", LevelLow},
		{"pitch", LevelMedium},
		{"asphalt", LevelHigh},
		{"water", LevelHigh},
		{"service", LevelLow},
		{"default", LevelLow},
	}
	for _, tt := range tests {
		if got := s.PartitionLevel(tt.surface); got != tt.want {
			t.Errorf("PartitionLevel(%q) = %s, want %s", tt.surface, got, tt.want)
		}
	}
}

func TestRelationTables(t *testing.T) {
	s := Default()

	if !s.AreaRelation(map[string]string{"type": "multipolygon", "natural": "water"}) {
		t.Error("natural=water should be an area relation")
	}
	if s.AreaRelation(map[string]string{"natural": "wood"}) {
		t.Error("natural=wood should not be an area relation")
	}
	if !s.BuildingRelation(map[string]string{"building": "cathedral"}) {
		t.Error("building=* should be a building relation")
	}
}
