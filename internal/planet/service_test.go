package planet

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
)

type countingCache struct {
	*MemoryCache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, rec *Record) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.MemoryCache.Set(ctx, rec)
}

func newTestService(cache Cache) *Service {
	return NewService(cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{MemoryCache: NewMemoryCache(0)}
	s := newTestService(cache)

	rec, err := s.Get(ctx, "Weathering.MapOfPlanet#=1,4=14,93=24,31")
	require.NoError(t, err)
	assert.Equal(t, 142, rec.PlanetSize)
	assert.Equal(t, 1, cache.Len())

	again, err := s.Get(ctx, "Weathering.MapOfPlanet#=1,4=14,93=24,31")
	require.NoError(t, err)
	assert.Equal(t, *rec, *again)
	assert.Equal(t, 1, cache.sets)
}

func TestService_Get_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestService(NewMemoryCache(0))

	_, err := s.Get(ctx, "Weathering.MapOfPlanet#=1,4=14,93")
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	_, err = s.Get(ctx, "Weathering.MapOfPlanet#=1,4=14,93=40,1")
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	_, err = s.Get(ctx, "Weathering.MapOfPlanet#=0,0=14,93=24,31")
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = s.Get(ctx, "Weathering.MapOfPlanet#=1,4=14,93=26,4")
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
	assert.ErrorIs(t, err, ErrNotTerrestrial)
}

func TestService_Get_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(NewMemoryCache(0))

	var wg sync.WaitGroup
	results := make([]*Record, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := s.Get(ctx, "Weathering.MapOfPlanet#=97,11=18,1=20,6")
			if err == nil {
				results[i] = rec
			}
		}(i)
	}
	wg.Wait()

	for _, rec := range results {
		require.NotNil(t, rec)
		assert.Equal(t, 120, rec.PlanetSize)
	}
}

func TestService_ListInSystem(t *testing.T) {
	s := newTestService(NewMemoryCache(0))

	planets, err := s.ListInSystem(context.Background(), mapkey.Coord{X: 1, Y: 4}, mapkey.Coord{X: 14, Y: 93})
	require.NoError(t, err)
	assert.Len(t, planets, 15)

	_, err = s.ListInSystem(context.Background(), mapkey.Coord{X: 1, Y: 4}, mapkey.Coord{X: 0, Y: 0})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
}

func TestMemoryCache_Bounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, &Record{MapKey: "a"}))
	require.NoError(t, c.Set(ctx, &Record{MapKey: "b"}))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Set(ctx, &Record{MapKey: "c"}))
	assert.Equal(t, 1, c.Len())

	rec, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "c", rec.MapKey)
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	c := NewCache(nil, 0, 10)
	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}
