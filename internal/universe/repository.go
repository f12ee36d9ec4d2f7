package universe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/shared/database"
	"planetinfo-server/internal/system"
)

// batchSize bounds the JSON payload of a single batch insert.
const batchSize = 5000

// Repository persists a built index to PostgreSQL so a restart can warm
// start without rescanning the universe.
type Repository struct {
	db       *database.DB
	galaxies *galaxy.Repository
	systems  *system.Repository
	planets  *planet.Repository
	logger   *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing universe repository")

	return &Repository{
		db:       db,
		galaxies: galaxy.NewRepository(db, logger),
		systems:  system.NewRepository(db, logger),
		planets:  planet.NewRepository(db, logger),
		logger:   logger,
	}
}

func inBatches[T any](items []T, fn func([]T) (int, error)) (int, error) {
	total := 0
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		n, err := fn(items[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// SaveIndex replaces the stored index with idx in one transaction.
func (r *Repository) SaveIndex(ctx context.Context, idx *Index) error {
	logger := r.logger.With("component", "universe_repository", "operation", "save_index")
	counts := idx.Counts()
	logger.Info("Persisting universe index",
		"galaxies", counts.Galaxies, "systems", counts.Systems, "planets", counts.Planets)

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := r.planets.DeleteAll(ctx, tx); err != nil {
		return err
	}
	if err := r.systems.DeleteAll(ctx, tx); err != nil {
		return err
	}
	if err := r.galaxies.DeleteAll(ctx, tx); err != nil {
		return err
	}

	if _, err := inBatches(idx.Galaxies, func(b []galaxy.Galaxy) (int, error) {
		return r.galaxies.CreateBatch(ctx, b, tx)
	}); err != nil {
		return err
	}
	if _, err := inBatches(idx.Systems, func(b []system.StarSystem) (int, error) {
		return r.systems.CreateBatch(ctx, b, tx)
	}); err != nil {
		return err
	}
	if _, err := inBatches(idx.Planets, func(b []planet.Record) (int, error) {
		return r.planets.CreateBatch(ctx, b, tx)
	}); err != nil {
		return err
	}

	failed, err := json.Marshal(nonNil(idx.FailedRows))
	if err != nil {
		return fmt.Errorf("failed to marshal failed rows: %w", err)
	}

	query := `
		INSERT INTO index_builds (built_at, galaxy_count, system_count, planet_count, duration_ms, failed_rows)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)`
	if _, err := tx.ExecContext(ctx, query,
		idx.BuiltAt, counts.Galaxies, counts.Systems, counts.Planets,
		idx.Duration.Milliseconds(), string(failed),
	); err != nil {
		logger.Error("Failed to record index build", "error", err)
		return fmt.Errorf("failed to record index build: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit index", "error", err)
		return fmt.Errorf("failed to commit index: %w", err)
	}

	logger.Info("Universe index persisted")
	return nil
}

// LoadIndex returns the most recently saved index, or nil when nothing has
// been saved yet.
func (r *Repository) LoadIndex(ctx context.Context) (*Index, error) {
	logger := r.logger.With("component", "universe_repository", "operation", "load_index")

	var (
		idx        Index
		durationMS int64
		failed     []byte
	)
	query := `
		SELECT built_at, duration_ms, failed_rows
		FROM index_builds
		ORDER BY id DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&idx.BuiltAt, &durationMS, &failed)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Debug("No stored index build")
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to query index build", "error", err)
		return nil, fmt.Errorf("failed to query index build: %w", err)
	}
	idx.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal(failed, &idx.FailedRows); err != nil {
		return nil, fmt.Errorf("failed to decode failed rows: %w", err)
	}

	if idx.Galaxies, err = r.galaxies.List(ctx); err != nil {
		return nil, err
	}
	if idx.Systems, err = r.systems.List(ctx); err != nil {
		return nil, err
	}
	if idx.Planets, err = r.planets.List(ctx); err != nil {
		return nil, err
	}

	p := partial{galaxies: idx.Galaxies, systems: idx.Systems, planets: idx.Planets, failed: idx.FailedRows}
	p.sortRowMajor()

	counts := idx.Counts()
	logger.Info("Loaded stored universe index",
		"built_at", idx.BuiltAt,
		"galaxies", counts.Galaxies, "systems", counts.Systems, "planets", counts.Planets)
	return &idx, nil
}

func nonNil(rows []int) []int {
	if rows == nil {
		return []int{}
	}
	return rows
}
