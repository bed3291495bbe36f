package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/wegman-software/osm2mt-go/internal/config"
	"github.com/wegman-software/osm2mt-go/internal/logger"
	"github.com/wegman-software/osm2mt-go/internal/proj"
	"github.com/wegman-software/osm2mt-go/internal/style"
)

var (
	cfg           = config.DefaultConfig()
	projectionStr string
)

var rootCmd = &cobra.Command{
	Use:   "osm2mt-go",
	Short: "Convert OpenStreetMap extracts into Minetest world features",
	Long: `osm2mt-go turns an OpenStreetMap extract into a bundle of projected,
classified features (areas, buildings, highways, waterways, decorations)
that a Minetest map generator can render.

Features:
  - Overpass JSON, OSM XML and PBF input
  - UTM and Web Mercator projection to integer meters
  - Multipolygon ring assembly from relation members
  - YAML vocabulary overlays and Lua surface rules
  - Optional GeoJSON preview and PostGIS load`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.Options{Verbose: cfg.Verbose, File: cfg.LogFile})

		if projectionStr != "" {
			srid, err := proj.ParseSRID(projectionStr)
			if err != nil {
				return err
			}
			cfg.Projection = srid
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command. A .env file in the working directory and
// OSM2MT_* variables set defaults that command-line flags override.
func Execute() error {
	config.LoadEnv(".env")
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid environment:", err)
		return err
	}
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Number of parallel workers")
	rootCmd.PersistentFlags().StringVarP(&projectionStr, "projection", "E", "", fmt.Sprintf("Target projection SRID (default %d)", proj.DefaultSRID))
	rootCmd.PersistentFlags().StringVarP(&cfg.StyleFile, "style", "S", cfg.StyleFile, "Style YAML file overlaying the built-in vocabulary")

	// Logging and metrics flags
	rootCmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().DurationVar(&cfg.MetricsInterval, "metrics-interval", cfg.MetricsInterval, "Interval for system metrics logging, 0 disables (e.g., 10s, 1m)")

	// Database flags (persistent so they're available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "PostgreSQL host")
	rootCmd.PersistentFlags().IntVar(&cfg.DBPort, "db-port", cfg.DBPort, "PostgreSQL port")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBName, "db-name", "d", cfg.DBName, "PostgreSQL database name")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBUser, "db-user", "U", cfg.DBUser, "PostgreSQL user")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBPassword, "db-password", "W", cfg.DBPassword, "PostgreSQL password")
	rootCmd.PersistentFlags().StringVar(&cfg.DBSchema, "db-schema", cfg.DBSchema, "PostgreSQL schema")
}

// loadStyle returns the built-in style, overlaid with --style when given
func loadStyle() (*style.Style, error) {
	if cfg.StyleFile == "" {
		return style.Default(), nil
	}
	sc, err := style.LoadConfig(cfg.StyleFile)
	if err != nil {
		return nil, err
	}
	return style.New(sc)
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	logger.Sync()
	os.Exit(1)
}
