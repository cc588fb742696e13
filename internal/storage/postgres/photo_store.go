// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

const defaultTable = "singles"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PhotoStoreConfig controls the Postgres connection pool used for photo rows.
type PhotoStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PhotoStore reads and writes photo rows. The table is expected to look like:
//
//	CREATE TABLE singles (
//	  id               BIGSERIAL PRIMARY KEY,
//	  link             TEXT NOT NULL UNIQUE,
//	  image            TEXT NOT NULL,
//	  width            INTEGER NOT NULL,
//	  height           INTEGER NOT NULL,
//	  "takenTimestamp" BIGINT,
//	  "addedTimestamp" BIGINT,
//	  description      TEXT,
//	  make             TEXT,
//	  model            TEXT,
//	  lens             TEXT,
//	  "focalLength"    DOUBLE PRECISION,
//	  aperture         DOUBLE PRECISION,
//	  iso              BIGINT,
//	  "shutterSpeed"   DOUBLE PRECISION
//	);
//
// Any id type works; it is returned as text.
type PhotoStore struct {
	pool  querier
	table string
}

// NewPhotoStore connects to Postgres using the provided config.
func NewPhotoStore(ctx context.Context, cfg PhotoStoreConfig) (*PhotoStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PhotoStore{pool: pool, table: table}, nil
}

// NewPhotoStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewPhotoStoreWithPool(pool querier, table string) (*PhotoStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &PhotoStore{pool: pool, table: table}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *PhotoStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListLinks returns every stored link.
func (s *PhotoStore) ListLinks(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT link FROM %s`, s.table))
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	links, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan links: %w", err)
	}
	return links, nil
}

// InsertPhoto inserts one row and returns its id. Absent EXIF fields are
// written as NULL.
func (s *PhotoStore) InsertPhoto(ctx context.Context, record scraper.PhotoRecord) (string, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (
	link,
	image,
	width,
	height,
	"takenTimestamp",
	"addedTimestamp",
	description,
	make,
	model,
	lens,
	"focalLength",
	aperture,
	iso,
	"shutterSpeed"
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
RETURNING id::text`, s.table)

	args := []any{
		record.Link,
		record.Image,
		record.Width,
		record.Height,
		record.TakenTimestamp,
		record.AddedTimestamp,
		record.Description,
		nullIfZero(record.Make),
		nullIfZero(record.Model),
		nullIfZero(record.Lens),
		nullIfZero(record.FocalLength),
		nullIfZero(record.Aperture),
		nullIfZero(record.ISO),
		nullIfZero(record.ShutterSpeed),
	}
	var id string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert photo %s: %w", record.Link, err)
	}
	return id, nil
}

func nullIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
