package galaxy

import (
	"log/slog"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	logger.Debug("Initializing galaxy service")

	return &Service{
		logger: logger,
	}
}

// Get returns the galaxy at pos, or a not found error if the cell is empty.
func (s *Service) Get(pos mapkey.Coord) (*Galaxy, error) {
	if !InGrid(pos.X, pos.Y) {
		return nil, errors.Validationf("galaxy coordinate %s outside %dx%d universe", pos, UniverseWidth, UniverseHeight)
	}
	if !Exists(pos.X, pos.Y) {
		return nil, errors.NotFoundf("no galaxy at %s", pos)
	}
	g := newGalaxy(pos)
	return &g, nil
}

func (s *Service) List() []Galaxy {
	logger := s.logger.With("component", "galaxy_service", "operation", "list")
	galaxies := All()
	logger.Debug("Galaxies enumerated", "count", len(galaxies))
	return galaxies
}
