package planet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/shared/database"
	"planetinfo-server/internal/system"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing planet repository")

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
	if _, err := r.getExecutor(tx).ExecContext(ctx, `DELETE FROM planets`); err != nil {
		r.logger.Error("Failed to delete planets", "error", err)
		return fmt.Errorf("failed to delete planets: %w", err)
	}
	return nil
}

// CreateBatch inserts planet records in a single statement using JSON.
func (r *Repository) CreateBatch(ctx context.Context, planets []Record, tx *database.Tx) (int, error) {
	if len(planets) == 0 {
		return 0, nil
	}

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "create_batch",
		"count", len(planets),
	)
	logger.Debug("Creating planets in batch")

	planetsJSON, err := json.Marshal(planets)
	if err != nil {
		logger.Error("Failed to marshal planets to JSON", "error", err)
		return 0, fmt.Errorf("failed to marshal planets: %w", err)
	}

	query := `
		INSERT INTO planets (
			map_key, gx, gy, sx, sy, px, py, star_type, kind,
			seconds_for_a_day, days_for_a_month, days_for_a_year, month_for_a_year,
			planet_size, mineral_density
		)
		SELECT
			data->>'map_key',
			(data->'galaxy_pos'->>'x')::integer,
			(data->'galaxy_pos'->>'y')::integer,
			(data->'star_system_pos'->>'x')::integer,
			(data->'star_system_pos'->>'y')::integer,
			(data->'planet_pos'->>'x')::integer,
			(data->'planet_pos'->>'y')::integer,
			data->>'star_type',
			data->>'celestial_kind',
			(data->>'seconds_for_a_day')::integer,
			(data->>'days_for_a_month')::integer,
			(data->>'days_for_a_year')::integer,
			(data->>'month_for_a_year')::integer,
			(data->>'planet_size')::integer,
			(data->>'mineral_density')::integer
		FROM json_array_elements($1::json) AS data`

	result, err := r.getExecutor(tx).ExecContext(ctx, query, string(planetsJSON))
	if err != nil {
		logger.Error("Failed to batch create planets", "error", err)
		return 0, fmt.Errorf("failed to batch create planets: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.Debug("Planets batch created", "inserted", inserted)
	return int(inserted), nil
}

func (r *Repository) List(ctx context.Context) ([]Record, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "list")
	logger.Debug("Listing stored planets")

	query := `
		SELECT map_key, gx, gy, sx, sy, px, py, star_type, kind,
			seconds_for_a_day, days_for_a_month, days_for_a_year, month_for_a_year,
			planet_size, mineral_density
		FROM planets
		ORDER BY map_key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query planets", "error", err)
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var planets []Record
	for rows.Next() {
		var (
			p        Record
			starType string
			kind     string
		)
		err := rows.Scan(
			&p.MapKey,
			&p.GalaxyPos.X,
			&p.GalaxyPos.Y,
			&p.StarSystemPos.X,
			&p.StarSystemPos.Y,
			&p.PlanetPos.X,
			&p.PlanetPos.Y,
			&starType,
			&kind,
			&p.SecondsForADay,
			&p.DaysForAMonth,
			&p.DaysForAYear,
			&p.MonthForAYear,
			&p.PlanetSize,
			&p.MineralDensity,
		)
		if err != nil {
			logger.Error("Failed to scan planet row", "error", err)
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		if p.StarType, err = system.ParseStarType(starType); err != nil {
			return nil, fmt.Errorf("planet %s: %w", p.MapKey, err)
		}
		if p.Kind, err = celestial.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("planet %s: %w", p.MapKey, err)
		}
		planets = append(planets, p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating planets: %w", err)
	}

	logger.Debug("Planets retrieved", "count", len(planets))
	return planets, nil
}
