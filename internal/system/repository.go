package system

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing system repository")

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

func (r *Repository) DeleteAll(ctx context.Context, tx *database.Tx) error {
	if _, err := r.getExecutor(tx).ExecContext(ctx, `DELETE FROM star_systems`); err != nil {
		r.logger.Error("Failed to delete star systems", "error", err)
		return fmt.Errorf("failed to delete star systems: %w", err)
	}
	return nil
}

type systemRow struct {
	MapKey        string         `json:"map_key"`
	GX            int            `json:"gx"`
	GY            int            `json:"gy"`
	SX            int            `json:"sx"`
	SY            int            `json:"sy"`
	StarType      int            `json:"star_type"`
	StarPositions []mapkey.Coord `json:"star_positions"`
}

// CreateBatch inserts star systems in a single statement using JSON.
func (r *Repository) CreateBatch(ctx context.Context, systems []StarSystem, tx *database.Tx) (int, error) {
	if len(systems) == 0 {
		return 0, nil
	}

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "create_batch",
		"count", len(systems),
	)
	logger.Debug("Creating star systems in batch")

	rows := make([]systemRow, len(systems))
	for i, s := range systems {
		rows[i] = systemRow{
			MapKey:        s.MapKey,
			GX:            s.GalaxyPos.X,
			GY:            s.GalaxyPos.Y,
			SX:            s.Pos.X,
			SY:            s.Pos.Y,
			StarType:      int(s.StarType),
			StarPositions: s.StarPositions,
		}
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		logger.Error("Failed to marshal star systems to JSON", "error", err)
		return 0, fmt.Errorf("failed to marshal star systems: %w", err)
	}

	query := `
		INSERT INTO star_systems (map_key, gx, gy, sx, sy, star_type, star_positions)
		SELECT
			data->>'map_key',
			(data->>'gx')::integer,
			(data->>'gy')::integer,
			(data->>'sx')::integer,
			(data->>'sy')::integer,
			(data->>'star_type')::smallint,
			(data->'star_positions')::jsonb
		FROM json_array_elements($1::json) AS data`

	result, err := r.getExecutor(tx).ExecContext(ctx, query, string(payload))
	if err != nil {
		logger.Error("Failed to batch create star systems", "error", err)
		return 0, fmt.Errorf("failed to batch create star systems: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.Debug("Star systems batch created", "inserted", inserted)
	return int(inserted), nil
}

func (r *Repository) List(ctx context.Context) ([]StarSystem, error) {
	logger := r.logger.With("component", "system_repository", "operation", "list")
	logger.Debug("Listing stored star systems")

	query := `
		SELECT map_key, gx, gy, sx, sy, star_type, star_positions
		FROM star_systems
		ORDER BY gy, gx, sy, sx`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query star systems", "error", err)
		return nil, fmt.Errorf("failed to query star systems: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var systems []StarSystem
	for rows.Next() {
		var (
			s         StarSystem
			starType  int
			positions []byte
		)
		if err := rows.Scan(&s.MapKey, &s.GalaxyPos.X, &s.GalaxyPos.Y, &s.Pos.X, &s.Pos.Y, &starType, &positions); err != nil {
			logger.Error("Failed to scan star system row", "error", err)
			return nil, fmt.Errorf("failed to scan star system: %w", err)
		}
		if err := json.Unmarshal(positions, &s.StarPositions); err != nil {
			return nil, fmt.Errorf("failed to decode star positions of %s: %w", s.MapKey, err)
		}
		s.StarType = StarType(starType)
		systems = append(systems, s)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating star systems: %w", err)
	}

	logger.Debug("Star systems retrieved", "count", len(systems))
	return systems, nil
}
