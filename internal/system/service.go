package system

import (
	"log/slog"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	logger.Debug("Initializing system service")

	return &Service{
		logger: logger,
	}
}

// Get returns the star system at pos inside the galaxy at galaxyPos.
func (s *Service) Get(galaxyPos, pos mapkey.Coord) (*StarSystem, error) {
	if !galaxy.InGrid(galaxyPos.X, galaxyPos.Y) || !InGrid(pos.X, pos.Y) {
		return nil, errors.Validationf("star system coordinate %s%s outside grid", galaxyPos, pos)
	}
	if !galaxy.Exists(galaxyPos.X, galaxyPos.Y) {
		return nil, errors.NotFoundf("no galaxy at %s", galaxyPos)
	}
	if !Exists(galaxyPos, pos.X, pos.Y) {
		return nil, errors.NotFoundf("no star system at %s in galaxy %s", pos, galaxyPos)
	}
	sys := newStarSystem(galaxyPos, pos)
	return &sys, nil
}

// GetByKey resolves a star system MapKey.
func (s *Service) GetByKey(key string) (*StarSystem, error) {
	coords, err := mapkey.ParseLevel(key, mapkey.StarSystem)
	if err != nil {
		return nil, errors.InvalidKey("star system", err)
	}
	return s.Get(coords[0], coords[1])
}

// ListInGalaxy returns the star systems of an existing galaxy.
func (s *Service) ListInGalaxy(galaxyPos mapkey.Coord) ([]StarSystem, error) {
	logger := s.logger.With(
		"component", "system_service",
		"operation", "list_in_galaxy",
		"galaxy", galaxyPos.String(),
	)

	if !galaxy.InGrid(galaxyPos.X, galaxyPos.Y) {
		return nil, errors.Validationf("galaxy coordinate %s outside grid", galaxyPos)
	}
	if !galaxy.Exists(galaxyPos.X, galaxyPos.Y) {
		return nil, errors.NotFoundf("no galaxy at %s", galaxyPos)
	}

	systems := InGalaxy(galaxyPos)
	logger.Debug("Star systems enumerated", "count", len(systems))
	return systems, nil
}
