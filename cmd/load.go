package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/loader"
	"github.com/wegman-software/osm2mt-go/internal/logger"
)

var createIndexes bool

var loadCmd = &cobra.Command{
	Use:   "load <features.json>",
	Short: "Load a feature bundle into PostgreSQL",
	Long: `Bulk load an extracted feature bundle into PostgreSQL/PostGIS.

This stage:
  1. Creates target tables (<prefix>_areas, _buildings, _highways,
     _waterways, _decorations) with geometry in the projection SRID
  2. Uses COPY through a staging table for high-speed bulk loading
  3. Optionally creates spatial indexes

The projection must match the one the bundle was extracted with.`,
	Args: cobra.ExactArgs(1),
	Run:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&createIndexes, "create-indexes", true, "Create spatial indexes after loading")
	loadCmd.Flags().BoolVar(&cfg.DropExisting, "drop-existing", false, "Drop existing tables before loading")
	loadCmd.Flags().StringVar(&cfg.TablePrefix, "table-prefix", cfg.TablePrefix, "Prefix of the feature table names")
}

func runLoad(cmd *cobra.Command, args []string) {
	cfg.InputFile = args[0]
	log := logger.Get()

	if err := cfg.ValidateLoad(); err != nil {
		exitWithError("invalid configuration", err)
	}

	log.Info("Starting PostgreSQL load",
		zap.String("input", cfg.InputFile),
		zap.String("database", cfg.DBName),
		zap.String("host", cfg.DBHost),
		zap.Int("port", cfg.DBPort),
		zap.String("user", cfg.DBUser),
		zap.String("schema", cfg.DBSchema),
		zap.String("prefix", cfg.TablePrefix),
		zap.Int("projection", cfg.Projection),
	)

	start := time.Now()

	bundle, err := features.ReadFile(cfg.InputFile)
	if err != nil {
		exitWithError("failed to read bundle", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ldr, err := loader.NewLoader(ctx, cfg, createIndexes)
	if err != nil {
		exitWithError("failed to create loader", err)
	}
	defer ldr.Close()

	stats, err := ldr.Run(ctx, bundle)
	if err != nil {
		exitWithError("load failed", err)
	}

	elapsed := time.Since(start)

	log.Info("Load complete",
		zap.Duration("duration", elapsed.Round(time.Second)),
		zap.Int64("rows", stats.RowsLoaded),
		zap.Float64("throughput_rows_s", float64(stats.RowsLoaded)/elapsed.Seconds()),
	)
}
