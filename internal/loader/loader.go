// Package loader copies a feature bundle into PostGIS tables.
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wegman-software/osm2mt-go/internal/config"
	"github.com/wegman-software/osm2mt-go/internal/features"
	"github.com/wegman-software/osm2mt-go/internal/logger"
)

// Stats holds loader statistics
type Stats struct {
	RowsLoaded int64
	Tables     map[string]int64
}

// Loader loads feature bundles into PostgreSQL
type Loader struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	createIndexes bool
}

// NewLoader connects to PostgreSQL
func NewLoader(ctx context.Context, cfg *config.Config, createIndexes bool) (*Loader, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Workers)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &Loader{
		cfg:           cfg,
		pool:          pool,
		createIndexes: createIndexes,
	}, nil
}

// Close closes connections
func (l *Loader) Close() {
	l.pool.Close()
}

// Run loads every feature table of b
func (l *Loader) Run(ctx context.Context, b *features.Bundle) (*Stats, error) {
	log := logger.Get()

	if _, err := l.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS postgis"); err != nil {
		return nil, fmt.Errorf("failed to create PostGIS extension: %w", err)
	}
	if l.cfg.DBSchema != "public" {
		schema := pgx.Identifier{l.cfg.DBSchema}.Sanitize()
		if _, err := l.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	tables := Tables(b, l.cfg.TablePrefix, l.cfg.Projection)
	counts := make([]int64, len(tables))

	// Phase 1: load all tables in parallel, without indexes
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tables {
		i, t := i, t
		g.Go(func() error {
			log.Info("Loading table", zap.String("table", t.Name), zap.Int("rows", len(t.Rows)))
			n, err := l.loadTable(gctx, t)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", t.Name, err)
			}
			counts[i] = n
			log.Info("Table loaded", zap.String("table", t.Name), zap.Int64("rows", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{Tables: make(map[string]int64, len(tables))}
	for i, t := range tables {
		stats.Tables[t.Name] = counts[i]
		stats.RowsLoaded += counts[i]
	}

	// Phase 2: indexes
	if l.createIndexes {
		log.Info("Creating indexes in parallel", zap.Int("tables", len(tables)))
		g, gctx := errgroup.WithContext(ctx)
		for _, t := range tables {
			t := t
			g.Go(func() error {
				return l.createTableIndexes(gctx, t.Name)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		log.Info("All indexes created")
	}

	return stats, nil
}

func (l *Loader) qualified(name string) string {
	return pgx.Identifier{l.cfg.DBSchema, name}.Sanitize()
}

// loadTable creates the table and copies rows through a staging table
func (l *Loader) loadTable(ctx context.Context, t *Table) (int64, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	table := l.qualified(t.Name)

	if l.cfg.DropExisting {
		if _, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return 0, fmt.Errorf("failed to drop table: %w", err)
		}
	}
	if _, err := conn.Exec(ctx, t.createSQL(table, l.cfg.Projection)); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}
	if !l.cfg.DropExisting {
		if _, err := conn.Exec(ctx, "TRUNCATE "+table); err != nil {
			return 0, fmt.Errorf("failed to truncate table: %w", err)
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	staging := t.Name + "_load_tmp"
	if _, err := tx.Exec(ctx, t.stagingSQL(staging)); err != nil {
		return 0, fmt.Errorf("failed to create temp table: %w", err)
	}

	count, err := tx.CopyFrom(ctx, pgx.Identifier{staging}, t.ColumnNames(), pgx.CopyFromRows(t.Rows))
	if err != nil {
		return 0, fmt.Errorf("COPY failed: %w", err)
	}

	// EWKB already carries the SRID
	cols := strings.Join(t.ColumnNames()[:len(t.Columns)], ", ")
	insertSQL := fmt.Sprintf(`
		INSERT INTO %s (%s, geom)
		SELECT %s, ST_GeomFromEWKB(geom_wkb)
		FROM %s
	`, table, cols, cols, staging)
	if _, err := tx.Exec(ctx, insertSQL); err != nil {
		return 0, fmt.Errorf("failed to insert from temp table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf("ALTER TABLE %s SET LOGGED", table)); err != nil {
		logger.Get().Warn("Failed to set table logged", zap.String("table", t.Name), zap.Error(err))
	}
	return count, nil
}

func (l *Loader) createTableIndexes(ctx context.Context, name string) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	table := l.qualified(name)
	statements := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING GIST (geom)", pgx.Identifier{name + "_geom_idx"}.Sanitize(), table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (osm_id)", pgx.Identifier{name + "_osm_id_idx"}.Sanitize(), table),
		"ANALYZE " + table,
	}
	for _, sql := range statements {
		if _, err := conn.Exec(ctx, sql); err != nil {
			return err
		}
	}
	return nil
}
