package galaxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"planetinfo-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing galaxy repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) getExecutor(tx *database.Tx) database.Executor {
	if tx != nil {
		return tx
	}
	return r.db
}

// DeleteAll removes every stored galaxy.
func (r *Repository) DeleteAll(ctx context.Context, tx *database.Tx) error {
	if _, err := r.getExecutor(tx).ExecContext(ctx, `DELETE FROM galaxies`); err != nil {
		r.logger.Error("Failed to delete galaxies", "error", err)
		return fmt.Errorf("failed to delete galaxies: %w", err)
	}
	return nil
}

// CreateBatch inserts galaxies in a single statement using JSON.
func (r *Repository) CreateBatch(ctx context.Context, galaxies []Galaxy, tx *database.Tx) (int, error) {
	if len(galaxies) == 0 {
		return 0, nil
	}

	logger := r.logger.With(
		"component", "galaxy_repository",
		"operation", "create_batch",
		"count", len(galaxies),
	)
	logger.Debug("Creating galaxies in batch")

	payload, err := json.Marshal(galaxies)
	if err != nil {
		logger.Error("Failed to marshal galaxies to JSON", "error", err)
		return 0, fmt.Errorf("failed to marshal galaxies: %w", err)
	}

	query := `
		INSERT INTO galaxies (map_key, gx, gy)
		SELECT
			data->>'map_key',
			(data->'pos'->>'x')::integer,
			(data->'pos'->>'y')::integer
		FROM json_array_elements($1::json) AS data`

	result, err := r.getExecutor(tx).ExecContext(ctx, query, string(payload))
	if err != nil {
		logger.Error("Failed to batch create galaxies", "error", err)
		return 0, fmt.Errorf("failed to batch create galaxies: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.Debug("Galaxies batch created", "inserted", inserted)
	return int(inserted), nil
}

func (r *Repository) List(ctx context.Context) ([]Galaxy, error) {
	logger := r.logger.With("component", "galaxy_repository", "operation", "list")
	logger.Debug("Listing stored galaxies")

	rows, err := r.db.QueryContext(ctx, `SELECT map_key, gx, gy FROM galaxies ORDER BY gy, gx`)
	if err != nil {
		logger.Error("Failed to query galaxies", "error", err)
		return nil, fmt.Errorf("failed to query galaxies: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var galaxies []Galaxy
	for rows.Next() {
		var g Galaxy
		if err := rows.Scan(&g.MapKey, &g.Pos.X, &g.Pos.Y); err != nil {
			logger.Error("Failed to scan galaxy row", "error", err)
			return nil, fmt.Errorf("failed to scan galaxy: %w", err)
		}
		galaxies = append(galaxies, g)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating galaxies: %w", err)
	}

	logger.Debug("Galaxies retrieved", "count", len(galaxies))
	return galaxies, nil
}
