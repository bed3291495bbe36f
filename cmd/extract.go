package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/osm2mt-go/internal/classify"
	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/extract"
	"github.com/wegman-software/osm2mt-go/internal/flex"
	"github.com/wegman-software/osm2mt-go/internal/logger"
	"github.com/wegman-software/osm2mt-go/internal/metrics"
	"github.com/wegman-software/osm2mt-go/internal/osmdata"
	"github.com/wegman-software/osm2mt-go/internal/rings"
)

var ringMismatch string

var extractCmd = &cobra.Command{
	Use:   "extract <input.json|input.osm|input.osm.pbf>",
	Short: "Extract Minetest features from an OSM file",
	Long: `Read an OSM extract and write a feature bundle as JSON.

The extraction runs in three passes:
  1. project every node to integer meters in the target projection
  2. route ways and relations into buckets (areas, buildings, highways,
     waterways, barriers) and assemble multipolygon rings
  3. build the features of each bucket, concurrently with --workers > 1

Elements that cannot be classified or completed are reported as
diagnostics and skipped; they never fail the run.`,
	Args: cobra.ExactArgs(1),
	Run:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "Feature bundle output file")
	extractCmd.Flags().StringVar(&cfg.GeoJSONFile, "geojson", "", "Also write the bundle as GeoJSON to this file")
	extractCmd.Flags().StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "Lua script defining classify_surface(tags)")
	extractCmd.Flags().StringVar(&ringMismatch, "ring-mismatch", string(rings.PolicyKeep), "Ring mismatch policy: keep or reset")
	extractCmd.Flags().StringVar(&cfg.MetricsFile, "metrics-file", "", "Write prometheus metrics in text format to this file")
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg.InputFile = args[0]
	log := logger.Get()

	policy, err := rings.ParsePolicy(ringMismatch)
	if err != nil {
		exitWithError("invalid ring mismatch policy", err)
	}
	cfg.RingMismatch = policy

	if err := cfg.ValidateExtract(); err != nil {
		exitWithError("invalid configuration", err)
	}

	st, err := loadStyle()
	if err != nil {
		exitWithError("failed to load style", err)
	}

	var override classify.Override
	if cfg.RulesFile != "" {
		rules, err := flex.LoadRules(cfg.RulesFile)
		if err != nil {
			exitWithError("failed to load rules", err)
		}
		defer rules.Close()
		if !rules.HasSurface() {
			log.Warn("Rules file defines no classify_surface", zap.String("rules", cfg.RulesFile))
		}
		override = rules
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := metrics.NewRun()
	counter := diag.NewCounter()
	reporter := diag.Multi(diag.NewLogger(log), counter, run)

	collector := metrics.NewCollector(cfg.MetricsInterval, log.Named("metrics"), func(m *metrics.SystemMetrics) {
		run.ObserveRSS(m.ProcessRSS)
	})
	stopMetrics := func() {}
	if cfg.MetricsInterval > 0 {
		mctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			collector.Start(mctx)
			close(done)
		}()
		stopMetrics = func() {
			cancel()
			<-done
		}
	}

	logFields := []zap.Field{
		zap.String("input", cfg.InputFile),
		zap.String("output", cfg.OutputFile),
		zap.Int("projection", cfg.Projection),
		zap.Int("workers", cfg.Workers),
		zap.String("ring_mismatch", string(cfg.RingMismatch)),
	}
	if cfg.StyleFile != "" {
		logFields = append(logFields, zap.String("style", cfg.StyleFile))
	}
	if cfg.RulesFile != "" {
		logFields = append(logFields, zap.String("rules", cfg.RulesFile))
	}
	log.Info("Starting extraction", logFields...)

	start := time.Now()

	ds, err := osmdata.Load(ctx, cfg.InputFile)
	if err != nil {
		exitWithError("failed to read input", err)
	}
	log.Info("Input loaded",
		zap.Int("nodes", len(ds.Nodes)),
		zap.Int("ways", len(ds.Ways)),
		zap.Int("relations", len(ds.Relations)),
		zap.Int("skipped", len(ds.Skipped)),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)

	extractor, err := extract.New(extract.Options{
		Style:    st,
		SRID:     cfg.Projection,
		Workers:  cfg.Workers,
		Policy:   cfg.RingMismatch,
		Override: override,
		Reporter: reporter,
	})
	if err != nil {
		exitWithError("failed to create extractor", err)
	}

	bundle, stats, err := extractor.Run(ctx, ds)
	if err != nil {
		exitWithError("extraction failed", err)
	}

	if err := bundle.WriteFile(cfg.OutputFile); err != nil {
		exitWithError("failed to write output", err)
	}
	if cfg.GeoJSONFile != "" {
		if err := bundle.WriteGeoJSON(cfg.GeoJSONFile); err != nil {
			exitWithError("failed to write GeoJSON", err)
		}
	}

	stopMetrics()
	run.ObserveStats(stats)
	if cfg.MetricsFile != "" {
		// short runs may finish before the first tick
		collector.Sample()
		if err := run.WriteTextfile(cfg.MetricsFile); err != nil {
			exitWithError("failed to write metrics", err)
		}
	}

	logSummary(log, stats, counter, time.Since(start))
}

// logSummary logs feature counts per category, diagnostics and bounds
func logSummary(log *zap.Logger, stats *extract.Stats, counter *diag.Counter, elapsed time.Duration) {
	f := stats.Features
	log.Info("Features",
		zap.Int("areas_outer", f.Outer),
		zap.Int("areas_inner", f.Inner),
		zap.Int("areas_low", f.Low),
		zap.Int("areas_medium", f.Medium),
		zap.Int("areas_high", f.High),
		zap.Int("buildings", f.Buildings),
		zap.Int("highways", f.Highways),
		zap.Int("waterways", f.Waterways),
		zap.Int("decorations", f.Decorations),
		zap.Int("rings", stats.Rings),
	)

	log.Info("Diagnostics",
		zap.Int64(string(diag.StructuralSkip), counter.Total(diag.StructuralSkip)),
		zap.Int64(string(diag.ClassificationMiss), counter.Total(diag.ClassificationMiss)),
		zap.Int64(string(diag.GeometryIncomplete), counter.Total(diag.GeometryIncomplete)),
		zap.Int64(string(diag.ValueParseFailure), counter.Total(diag.ValueParseFailure)),
	)

	fields := []zap.Field{
		zap.Duration("duration", elapsed.Round(time.Millisecond)),
		zap.Int("total", f.Total()),
		zap.Int("projections", stats.Projections),
	}
	if stats.BBox.Valid {
		width, height := stats.BBox.Size()
		fields = append(fields,
			zap.Int("min_x", stats.BBox.MinX),
			zap.Int("max_x", stats.BBox.MaxX),
			zap.Int("min_y", stats.BBox.MinY),
			zap.Int("max_y", stats.BBox.MaxY),
			zap.Int("width", width),
			zap.Int("height", height),
		)
	}
	log.Info("Extraction complete", fields...)
}
