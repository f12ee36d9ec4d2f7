package universe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/mapkey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func oneGalaxyRow(_ context.Context, y int) (*partial, error) {
	return &partial{galaxies: []galaxy.Galaxy{{Pos: mapkey.Coord{X: 0, Y: y}}}}, nil
}

func (ix *Indexer) joiners() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.inflight == nil {
		return 0
	}
	return int(ix.inflight.joined.Load())
}

func newTestIndexer(opts Options, scan rowScanner) *Indexer {
	ix := NewIndexer(opts, discardLogger())
	ix.scanRow = scan
	return ix
}

func TestBuild_FullUniverse(t *testing.T) {
	if testing.Short() {
		t.Skip("full universe scan")
	}
	ix := NewIndexer(Options{Workers: 4}, discardLogger())

	idx, err := ix.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Counts{Galaxies: 196, Systems: 9801, Planets: 76265}, idx.Counts())
	assert.True(t, idx.Complete())
	assert.Equal(t, mapkey.Coord{X: 52, Y: 0}, idx.Galaxies[0].Pos)
	assert.Same(t, idx, ix.Current())
	assert.Equal(t, StateReady, ix.Status().State)
}

func TestBuild_RowOrderIndependentOfWorkers(t *testing.T) {
	one, err := newTestIndexer(Options{Workers: 1}, oneGalaxyRow).Build(context.Background())
	require.NoError(t, err)
	many, err := newTestIndexer(Options{Workers: 8}, oneGalaxyRow).Build(context.Background())
	require.NoError(t, err)

	require.Len(t, many.Galaxies, galaxy.UniverseHeight)
	assert.Equal(t, one.Galaxies, many.Galaxies)
	for y, g := range many.Galaxies {
		assert.Equal(t, y, g.Pos.Y)
	}
}

func TestBuild_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	scan := func(ctx context.Context, y int) (*partial, error) {
		if y == 7 && attempts.Add(1) < 3 {
			return nil, errors.New("transient")
		}
		return oneGalaxyRow(ctx, y)
	}

	idx, err := newTestIndexer(Options{Workers: 2, RetryAttempts: 3}, scan).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, idx.Complete())
	assert.Len(t, idx.Galaxies, galaxy.UniverseHeight)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestBuild_ReportsFailedRows(t *testing.T) {
	scan := func(ctx context.Context, y int) (*partial, error) {
		switch y {
		case 3:
			panic("corrupt row")
		case 42:
			return nil, errors.New("always fails")
		}
		return oneGalaxyRow(ctx, y)
	}

	ix := newTestIndexer(Options{Workers: 4, RetryAttempts: 2}, scan)
	idx, err := ix.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3, 42}, idx.FailedRows)
	assert.False(t, idx.Complete())
	assert.Len(t, idx.Galaxies, galaxy.UniverseHeight-2)
	assert.Equal(t, []int{3, 42}, ix.Status().FailedRows)
}

func TestBuild_ConcurrentCallersShareOneBuild(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once

	scan := func(ctx context.Context, y int) (*partial, error) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-gate
		return oneGalaxyRow(ctx, y)
	}
	ix := newTestIndexer(Options{Workers: 4}, scan)

	results := make(chan *Index, 5)
	go func() {
		idx, err := ix.Build(context.Background())
		assert.NoError(t, err)
		results <- idx
	}()
	<-started
	assert.True(t, ix.Building())
	assert.Equal(t, StateBuilding, ix.Status().State)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, err := ix.Build(context.Background())
			assert.NoError(t, err)
			results <- idx
		}()
	}
	require.Eventually(t, func() bool { return ix.joiners() == 4 }, 5*time.Second, time.Millisecond)
	close(gate)
	wg.Wait()

	first := <-results
	for i := 0; i < 4; i++ {
		assert.Same(t, first, <-results)
	}
	assert.EqualValues(t, galaxy.UniverseHeight, calls.Load())
	assert.False(t, ix.Building())
}

func TestBuild_CancelKeepsPreviousIndex(t *testing.T) {
	ix := newTestIndexer(Options{Workers: 2}, oneGalaxyRow)
	previous := &Index{Galaxies: []galaxy.Galaxy{{MapKey: "previous"}}}
	ix.Publish(previous)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, previous, ix.Current())
	assert.Equal(t, StateReady, ix.Status().State)
}

func TestBuildDetached_StarterLeavingDoesNotCancelBuild(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	scan := func(ctx context.Context, y int) (*partial, error) {
		once.Do(func() { close(started) })
		<-gate
		return oneGalaxyRow(ctx, y)
	}
	ix := newTestIndexer(Options{Workers: 2}, scan)

	starterCtx, cancelStarter := context.WithCancel(context.Background())
	starterErr := make(chan error, 1)
	go func() {
		_, err := ix.BuildDetached(starterCtx, context.Background())
		starterErr <- err
	}()
	<-started

	joined := make(chan *Index, 1)
	go func() {
		idx, err := ix.BuildDetached(context.Background(), context.Background())
		assert.NoError(t, err)
		joined <- idx
	}()
	require.Eventually(t, func() bool { return ix.joiners() == 1 }, 5*time.Second, time.Millisecond)

	cancelStarter()
	assert.ErrorIs(t, <-starterErr, context.Canceled)
	assert.True(t, ix.Building())

	close(gate)
	idx := <-joined
	require.NotNil(t, idx)
	assert.Len(t, idx.Galaxies, galaxy.UniverseHeight)
	assert.Same(t, idx, ix.Current())
}

func TestBuildDetached_RunContextCancelsBuild(t *testing.T) {
	ix := newTestIndexer(Options{Workers: 2}, oneGalaxyRow)
	previous := &Index{Galaxies: []galaxy.Galaxy{{MapKey: "previous"}}}
	ix.Publish(previous)

	runCtx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.BuildDetached(context.Background(), runCtx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, previous, ix.Current())
	assert.False(t, ix.Building())
}

func TestStart_ClosesWhenDone(t *testing.T) {
	var (
		mu      sync.Mutex
		reports []int
	)
	opts := Options{
		Workers: 3,
		Progress: func(done, total int) {
			mu.Lock()
			reports = append(reports, done)
			mu.Unlock()
		},
	}
	ix := newTestIndexer(opts, oneGalaxyRow)
	assert.Equal(t, StateEmpty, ix.Status().State)

	<-ix.Start(context.Background())

	require.NotNil(t, ix.Current())
	assert.Equal(t, galaxy.UniverseHeight, ix.Status().Counts.Galaxies)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, reports, galaxy.UniverseHeight)
	assert.Contains(t, reports, galaxy.UniverseHeight)
}
