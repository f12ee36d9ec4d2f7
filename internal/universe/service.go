package universe

import (
	"context"
	"log/slog"

	"planetinfo-server/internal/shared/errors"
)

// Store persists index snapshots. Repository is the PostgreSQL implementation.
type Store interface {
	SaveIndex(ctx context.Context, idx *Index) error
	LoadIndex(ctx context.Context) (*Index, error)
}

type Service struct {
	indexer *Indexer
	store   Store
	logger  *slog.Logger

	// buildCtx outlives requests; rebuilds run and persist on it.
	buildCtx context.Context
}

// NewService wires the indexer to an optional store; store may be nil.
func NewService(indexer *Indexer, store Store, logger *slog.Logger) *Service {
	logger.Debug("Initializing universe service", "persistent", store != nil)

	return &Service{
		indexer:  indexer,
		store:    store,
		logger:   logger,
		buildCtx: context.Background(),
	}
}

// WithBuildContext sets the server-lifetime context that rebuilds run on.
// Cancelling it stops a running build.
func (s *Service) WithBuildContext(ctx context.Context) *Service {
	s.buildCtx = ctx
	return s
}

// WarmStart publishes the stored index, if any. It reports whether one was found.
func (s *Service) WarmStart(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	idx, err := s.store.LoadIndex(ctx)
	if err != nil {
		return false, errors.WrapInternal("failed to load stored index", err)
	}
	if idx == nil {
		return false, nil
	}
	s.indexer.Publish(idx)
	return true, nil
}

// Rebuild runs (or joins) an index build and persists the result when a
// store is configured. ctx bounds only the wait; the build itself runs on
// the service's build context.
func (s *Service) Rebuild(ctx context.Context) (Status, error) {
	logger := s.logger.With("component", "universe_service", "operation", "rebuild")

	idx, err := s.indexer.BuildDetached(ctx, s.buildCtx)
	if err != nil {
		if ctx.Err() != nil {
			return s.indexer.Status(), errors.Unavailable("stopped waiting for the universe index build")
		}
		return s.indexer.Status(), errors.WrapInternal("universe index build failed", err)
	}

	if s.store != nil {
		if err := s.store.SaveIndex(s.buildCtx, idx); err != nil {
			logger.Error("Failed to persist universe index", "error", err)
			return s.indexer.Status(), errors.WrapInternal("failed to persist universe index", err)
		}
	}
	return s.indexer.Status(), nil
}

// StartBackground begins a build without waiting for it. The result is
// persisted once the build completes.
func (s *Service) StartBackground(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	built := s.indexer.Start(ctx)
	go func() {
		defer close(done)
		<-built
		idx := s.indexer.Current()
		if s.store == nil || idx == nil || ctx.Err() != nil {
			return
		}
		if err := s.store.SaveIndex(ctx, idx); err != nil {
			s.logger.Error("Failed to persist universe index", "error", err)
		}
	}()
	return done
}

func (s *Service) Status() Status {
	return s.indexer.Status()
}

// QueryPlanets answers from the published index. It fails with an
// unavailable error until the first build completes.
func (s *Service) QueryPlanets(q Query) (Page, error) {
	idx := s.indexer.Current()
	if idx == nil {
		return Page{}, errors.Unavailable("universe index is not built yet")
	}
	if q.Limit > MaxLimit {
		return Page{}, errors.Validationf("limit %d exceeds maximum %d", q.Limit, MaxLimit)
	}
	if q.Offset < 0 || q.Limit < 0 {
		return Page{}, errors.Validation("offset and limit must not be negative")
	}
	return idx.QueryPlanets(q), nil
}
