package planet

import (
	"context"
	stderrors "errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
	"planetinfo-server/internal/system"
)

type Service struct {
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger
}

func NewService(cache Cache, logger *slog.Logger) *Service {
	logger.Debug("Initializing planet service")

	return &Service{
		cache:  cache,
		logger: logger,
	}
}

// Get returns the record for a planet key whose galaxy and star system exist.
func (s *Service) Get(ctx context.Context, key string) (*Record, error) {
	logger := s.logger.With(
		"component", "planet_service",
		"operation", "get",
		"map_key", key,
	)

	coords, err := mapkey.ParseLevel(key, mapkey.Planet)
	if err != nil {
		return nil, errors.InvalidKey("planet", err)
	}
	g, sys, p := coords[0], coords[1], coords[2]
	if !galaxy.InGrid(g.X, g.Y) || !system.InGrid(sys.X, sys.Y) || p.X >= system.TileGrid || p.Y >= system.TileGrid {
		return nil, errors.Validationf("planet key %s has coordinates outside the grid", key)
	}
	if !galaxy.Exists(g.X, g.Y) || !system.Exists(g, sys.X, sys.Y) {
		return nil, errors.NotFoundf("no star system at %s%s", g, sys)
	}

	rec, err := s.cache.Get(ctx, key)
	if err == nil {
		logger.Debug("Planet cache hit")
		return rec, nil
	}
	if !stderrors.Is(err, ErrCacheMiss) {
		logger.Warn("Planet cache read failed", "error", err)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return Compute(key)
	})
	if err != nil {
		if stderrors.Is(err, ErrNotTerrestrial) {
			logger.Debug("Tile is not a playable planet", "reason", err)
			return nil, errors.WrapNotFound("no playable planet", err)
		}
		return nil, errors.WrapInternal("failed to compute planet", err)
	}
	rec = v.(*Record)

	if err := s.cache.Set(ctx, rec); err != nil {
		logger.Warn("Planet cache write failed", "error", err)
	}

	logger.Debug("Planet computed", "kind", rec.Kind.String())
	return rec, nil
}

// ListInSystem returns the playable planets of an existing star system.
func (s *Service) ListInSystem(ctx context.Context, galaxyPos, systemPos mapkey.Coord) ([]Record, error) {
	logger := s.logger.With(
		"component", "planet_service",
		"operation", "list_in_system",
		"galaxy", galaxyPos.String(),
		"system", systemPos.String(),
	)

	if !galaxy.Exists(galaxyPos.X, galaxyPos.Y) || !system.Exists(galaxyPos, systemPos.X, systemPos.Y) {
		return nil, errors.NotFoundf("no star system at %s%s", galaxyPos, systemPos)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	planets := InSystem(system.Lookup(galaxyPos, systemPos))
	logger.Debug("Planets enumerated", "count", len(planets))
	return planets, nil
}
