package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/extract"
)

const namespace = "osm2mt"

// Run holds the counters of a single extract run on its own registry.
// It implements diag.Reporter.
type Run struct {
	registry *prometheus.Registry

	elements    *prometheus.GaugeVec
	features    *prometheus.GaugeVec
	diagnostics *prometheus.CounterVec
	projections prometheus.Gauge
	rings       prometheus.Gauge
	duration    prometheus.Gauge
	peakRSS     prometheus.Gauge

	peak atomic.Uint64
}

// NewRun creates the run metrics and registers them
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		elements: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "input_elements",
			Help:      "Input elements by OSM type",
		}, []string{"type"}),
		features: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "features",
			Help:      "Emitted features by collection",
		}, []string{"collection"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics by reason and category",
		}, []string{"reason", "category"}),
		projections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "projections",
			Help:      "Coordinate projections evaluated",
		}),
		rings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rings",
			Help:      "Relation rings assembled",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Wall time of the extract passes",
		}),
		peakRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_rss_bytes",
			Help:      "Highest resident set size sampled during the run",
		}),
	}
	r.registry.MustRegister(r.elements, r.features, r.diagnostics,
		r.projections, r.rings, r.duration, r.peakRSS)
	return r
}

// Registry returns the registry holding the run metrics
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// Report counts a diagnostic
func (r *Run) Report(d diag.Diagnostic) {
	r.diagnostics.WithLabelValues(string(d.Reason), string(d.Reason.Category())).Inc()
}

// ObserveStats copies extraction statistics into the gauges
func (r *Run) ObserveStats(s *extract.Stats) {
	r.elements.WithLabelValues("node").Set(float64(s.Nodes))
	r.elements.WithLabelValues("way").Set(float64(s.Ways))
	r.elements.WithLabelValues("relation").Set(float64(s.Relations))

	f := s.Features
	for name, n := range map[string]int{
		"areas_outer":  f.Outer,
		"areas_inner":  f.Inner,
		"areas_low":    f.Low,
		"areas_medium": f.Medium,
		"areas_high":   f.High,
		"buildings":    f.Buildings,
		"highways":     f.Highways,
		"waterways":    f.Waterways,
		"decorations":  f.Decorations,
	} {
		r.features.WithLabelValues(name).Set(float64(n))
	}

	r.projections.Set(float64(s.Projections))
	r.rings.Set(float64(s.Rings))
	r.duration.Set(s.Duration.Seconds())
}

// ObserveRSS raises the peak RSS gauge when rss exceeds it
func (r *Run) ObserveRSS(rss uint64) {
	for {
		cur := r.peak.Load()
		if rss <= cur {
			return
		}
		if r.peak.CompareAndSwap(cur, rss) {
			r.peakRSS.Set(float64(rss))
			return
		}
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// PeakRSS returns the highest observed resident set size in bytes
func (r *Run) PeakRSS() uint64 {
	return r.peak.Load()
}
