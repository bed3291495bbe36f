package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wegman-software/osm2mt-go/internal/proj"
	"github.com/wegman-software/osm2mt-go/internal/rings"
)

// EnvPrefix prefixes every environment variable ApplyEnv reads
const EnvPrefix = "OSM2MT_"

// Config holds the global configuration for extract and load runs
type Config struct {
	// Input settings
	InputFile string
	StyleFile string // YAML vocabulary overlay
	RulesFile string // Lua surface rules

	// Output settings
	OutputFile  string
	GeoJSONFile string // optional GeoJSON preview
	Projection  int    // target SRID

	// Processing settings
	Workers      int
	RingMismatch rings.Policy

	// Database settings
	DBHost       string
	DBPort       int
	DBName       string
	DBUser       string
	DBPassword   string
	DBSchema     string
	TablePrefix  string
	DropExisting bool

	// Logging and metrics
	Verbose         bool
	LogFile         string        // Path to log file (empty = no file logging)
	MetricsFile     string        // Prometheus textfile written at the end of a run
	MetricsInterval time.Duration // Interval for system metrics logging, 0 disables
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputFile:      "features.json",
		Projection:      proj.DefaultSRID,
		Workers:         runtime.NumCPU(),
		RingMismatch:    rings.PolicyKeep,
		DBHost:          "localhost",
		DBPort:          5432,
		DBName:          "osm",
		DBUser:          "postgres",
		DBSchema:        "public",
		TablePrefix:     "osm2mt",
		MetricsInterval: 30 * time.Second,
	}
}

// LoadEnv reads KEY=VALUE pairs from the given dotenv files into the
// process environment. Missing files are ignored and existing variables win.
func LoadEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// ApplyEnv overrides fields from OSM2MT_* environment variables.
// Unset variables leave the field unchanged.
func (c *Config) ApplyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("DB_HOST", &c.DBHost)
	str("DB_NAME", &c.DBName)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_SCHEMA", &c.DBSchema)
	str("TABLE_PREFIX", &c.TablePrefix)
	str("LOG_FILE", &c.LogFile)
	str("STYLE", &c.StyleFile)
	str("RULES", &c.RulesFile)

	if err := num("DB_PORT", &c.DBPort); err != nil {
		return err
	}
	if err := num("WORKERS", &c.Workers); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PROJECTION"); ok {
		srid, err := proj.ParseSRID(v)
		if err != nil {
			return fmt.Errorf("%sPROJECTION: %w", EnvPrefix, err)
		}
		c.Projection = srid
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *Config) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBName, c.DBUser,
	)
	if c.DBPassword != "" {
		connStr += fmt.Sprintf(" password=%s", c.DBPassword)
	}
	return connStr
}

// Validate checks the settings shared by every command
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if _, err := proj.NewTransformer(c.Projection); err != nil {
		return err
	}
	if _, err := rings.ParsePolicy(string(c.RingMismatch)); err != nil {
		return err
	}
	if c.MetricsInterval < 0 {
		return fmt.Errorf("metrics interval must not be negative")
	}
	return nil
}

// ValidateExtract checks the settings of an extract run
func (c *Config) ValidateExtract() error {
	if c.InputFile == "" {
		return fmt.Errorf("input file is required")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	return c.Validate()
}

// ValidateLoad checks the settings of a database load
func (c *Config) ValidateLoad() error {
	if c.InputFile == "" {
		return fmt.Errorf("bundle file is required")
	}
	if c.DBPort < 1 || c.DBPort > 65535 {
		return fmt.Errorf("invalid database port %d", c.DBPort)
	}
	if c.TablePrefix == "" {
		return fmt.Errorf("table prefix is required")
	}
	return c.Validate()
}
