package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/extract"
	"github.com/wegman-software/osm2mt-go/internal/features"
)

func TestRunTextfile(t *testing.T) {
	r := NewRun()
	r.Report(diag.Diagnostic{Reason: diag.UndefinedSurface, Element: diag.Way(1)})
	r.Report(diag.Diagnostic{Reason: diag.UndefinedSurface, Element: diag.Way(2)})
	r.Report(diag.Diagnostic{Reason: diag.OpenRing, Element: diag.Relation(3)})
	r.ObserveStats(&extract.Stats{
		Nodes:       10,
		Ways:        4,
		Relations:   1,
		Projections: 10,
		Rings:       2,
		Features:    features.Counts{Low: 1, Buildings: 2},
		Duration:    1500 * time.Millisecond,
	})
	r.ObserveRSS(2048)
	r.ObserveRSS(1024)

	path := filepath.Join(t.TempDir(), "osm2mt.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		`osm2mt_diagnostics_total{category="classification_miss",reason="undefined_surface"} 2`,
		`osm2mt_diagnostics_total{category="geometry_incomplete",reason="open_ring"} 1`,
		`osm2mt_input_elements{type="node"} 10`,
		`osm2mt_features{collection="buildings"} 2`,
		`osm2mt_projections 10`,
		`osm2mt_extract_duration_seconds 1.5`,
		`osm2mt_peak_rss_bytes 2048`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q\n%s", want, out)
		}
	}
	if r.PeakRSS() != 2048 {
		t.Errorf("PeakRSS() = %d, want 2048", r.PeakRSS())
	}
}

func TestRunRegistryGather(t *testing.T) {
	r := NewRun()
	r.Report(diag.Diagnostic{Reason: diag.BadLayer, Element: diag.Way(7)})

	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "osm2mt_diagnostics_total" {
			found = len(mf.GetMetric()) == 1 && mf.GetMetric()[0].GetCounter().GetValue() == 1
		}
	}
	if !found {
		t.Error("diagnostics counter not gathered")
	}
}

func TestCollectorSample(t *testing.T) {
	var got *SystemMetrics
	c := NewCollector(0, zap.NewNop(), func(m *SystemMetrics) { got = m })
	if c.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s default", c.interval)
	}

	m := c.Sample()
	if m == nil || got != m {
		t.Fatal("onSample should receive the sample")
	}
	if m.Timestamp.IsZero() {
		t.Error("sample has no timestamp")
	}
	if c.GetMetrics() != m {
		t.Error("GetMetrics should return the last sample")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
