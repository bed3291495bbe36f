package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wegman-software/osm2mt-go/internal/proj"
	"github.com/wegman-software/osm2mt-go/internal/rings"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Projection != proj.DefaultSRID {
		t.Errorf("Projection = %d, want %d", cfg.Projection, proj.DefaultSRID)
	}
	if cfg.RingMismatch != rings.PolicyKeep {
		t.Errorf("RingMismatch = %q", cfg.RingMismatch)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.TablePrefix != "osm2mt" {
		t.Errorf("TablePrefix = %q", cfg.TablePrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"no input", func(c *Config) { c.InputFile = "" }, "input file"},
		{"no output", func(c *Config) { c.OutputFile = "" }, "output file"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad projection", func(c *Config) { c.Projection = 2154 }, "2154"},
		{"bad policy", func(c *Config) { c.RingMismatch = "merge" }, "merge"},
		{"negative interval", func(c *Config) { c.MetricsInterval = -1 }, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InputFile = "in.json"
			tt.modify(cfg)
			err := cfg.ValidateExtract()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ValidateExtract() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.InputFile = "features.json"
	cfg.TablePrefix = ""
	if err := cfg.ValidateLoad(); err == nil {
		t.Error("empty table prefix should fail load validation")
	}
}

func TestConnectionString(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ConnectionString()
	want := "host=localhost port=5432 dbname=osm user=postgres sslmode=disable"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}

	cfg.DBPassword = "secret"
	if !strings.HasSuffix(cfg.ConnectionString(), " password=secret") {
		t.Errorf("ConnectionString() = %q", cfg.ConnectionString())
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OSM2MT_DB_HOST", "db.internal")
	t.Setenv("OSM2MT_DB_PORT", "6543")
	t.Setenv("OSM2MT_PROJECTION", "EPSG:3857")
	t.Setenv("OSM2MT_TABLE_PREFIX", "mt")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.DBHost != "db.internal" || cfg.DBPort != 6543 || cfg.Projection != 3857 || cfg.TablePrefix != "mt" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.DBName != "osm" {
		t.Errorf("unset variable changed DBName to %q", cfg.DBName)
	}

	t.Setenv("OSM2MT_WORKERS", "many")
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric OSM2MT_WORKERS")
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OSM2MT_TEST_ONLY_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OSM2MT_TEST_ONLY_VALUE", "")
	os.Unsetenv("OSM2MT_TEST_ONLY_VALUE")

	LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path)
	if got := os.Getenv("OSM2MT_TEST_ONLY_VALUE"); got != "from-file" {
		t.Errorf("OSM2MT_TEST_ONLY_VALUE = %q, want from-file", got)
	}
}
