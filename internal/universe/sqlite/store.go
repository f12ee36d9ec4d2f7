// Package sqlite exports a universe index into a standalone SQLite file
// for offline analysis.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"planetinfo-server/internal/universe"
)

//go:embed schema.sql
var schema string

// Store writes index snapshots to SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the SQLite file at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveIndex replaces the file contents with idx.
func (s *Store) SaveIndex(ctx context.Context, idx *universe.Index) (err error) {
	if idx == nil {
		return fmt.Errorf("index is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err == nil {
			err = fmt.Errorf("rollback: %w", rbErr)
		}
	}()

	for _, table := range []string{"planets", "star_systems", "galaxies", "index_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx,
		`INSERT INTO galaxies (map_key, gx, gy) VALUES (?, ?, ?)`,
		len(idx.Galaxies), func(i int) []any {
			g := idx.Galaxies[i]
			return []any{g.MapKey, g.Pos.X, g.Pos.Y}
		}); err != nil {
		return fmt.Errorf("insert galaxies: %w", err)
	}

	if err := insertAll(ctx, tx,
		`INSERT INTO star_systems (map_key, gx, gy, sx, sy, star_type, star_count) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(idx.Systems), func(i int) []any {
			sys := idx.Systems[i]
			return []any{sys.MapKey, sys.GalaxyPos.X, sys.GalaxyPos.Y, sys.Pos.X, sys.Pos.Y, sys.StarType.String(), len(sys.StarPositions)}
		}); err != nil {
		return fmt.Errorf("insert star systems: %w", err)
	}

	if err := insertAll(ctx, tx,
		`INSERT INTO planets (
		   map_key, system_key, px, py, star_type, kind,
		   seconds_for_a_day, days_for_a_month, days_for_a_year, month_for_a_year,
		   planet_size, mineral_density
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(idx.Planets), func(i int) []any {
			p := idx.Planets[i]
			return []any{
				p.MapKey, p.SystemKey(), p.PlanetPos.X, p.PlanetPos.Y, p.StarType.String(), p.Kind.String(),
				p.SecondsForADay, p.DaysForAMonth, p.DaysForAYear, p.MonthForAYear,
				p.PlanetSize, p.MineralDensity,
			}
		}); err != nil {
		return fmt.Errorf("insert planets: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO index_meta (built_at, duration_ms, failed_rows) VALUES (?, ?, ?)`,
		idx.BuiltAt.UTC().UnixMilli(), idx.Duration.Milliseconds(), len(idx.FailedRows),
	); err != nil {
		return fmt.Errorf("insert index meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// Counts reports the number of stored rows per level.
func (s *Store) Counts(ctx context.Context) (universe.Counts, error) {
	var c universe.Counts
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM galaxies),
		   (SELECT COUNT(*) FROM star_systems),
		   (SELECT COUNT(*) FROM planets)`,
	).Scan(&c.Galaxies, &c.Systems, &c.Planets)
	if err != nil {
		return universe.Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

// KindHistogram returns the number of stored planets per celestial kind name.
func (s *Store) KindHistogram(ctx context.Context) (map[string]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT kind, COUNT(*) FROM planets GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("query kinds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan kind: %w", err)
		}
		out[kind] = count
	}
	return out, rows.Err()
}
