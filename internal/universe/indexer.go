package universe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/system"
)

type Options struct {
	// Workers is the size of the row worker pool. Zero means GOMAXPROCS.
	Workers int
	// RetryAttempts is how many times a failing row is scanned before it is
	// reported in Index.FailedRows.
	RetryAttempts int
	// Progress, when set, is called after each row with the number of rows done.
	Progress func(done, total int)
}

type rowScanner func(ctx context.Context, y int) (*partial, error)

// build is one in-flight index build. done is closed once index and err
// are final; every caller that joined the build waits on it.
type build struct {
	done   chan struct{}
	index  *Index
	err    error
	joined atomic.Int32
}

// Indexer owns the published universe index and runs at most one build
// at a time.
type Indexer struct {
	opts     Options
	scanRow  rowScanner
	current  atomic.Pointer[Index]
	building atomic.Bool

	mu       sync.Mutex
	inflight *build

	tracer trace.Tracer
	logger *slog.Logger
}

func NewIndexer(opts Options, logger *slog.Logger) *Indexer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 1
	}
	logger.Debug("Initializing universe indexer", "workers", opts.Workers, "retry_attempts", opts.RetryAttempts)

	return &Indexer{
		opts:    opts,
		scanRow: scanRow,
		tracer:  otel.Tracer("planetinfo-server/universe"),
		logger:  logger,
	}
}

// Current returns the last published index, or nil before the first build.
func (ix *Indexer) Current() *Index {
	return ix.current.Load()
}

func (ix *Indexer) Building() bool {
	return ix.building.Load()
}

// Publish replaces the current index, e.g. with a snapshot loaded from storage.
func (ix *Indexer) Publish(idx *Index) {
	ix.current.Store(idx)
}

func (ix *Indexer) Status() Status {
	idx := ix.Current()
	st := Status{State: StateEmpty}
	if idx != nil {
		st.State = StateReady
		st.Counts = idx.Counts()
		st.BuiltAt = idx.BuiltAt
		st.DurationMS = idx.Duration.Milliseconds()
		st.FailedRows = idx.FailedRows
	}
	if ix.Building() {
		st.State = StateBuilding
	}
	return st
}

// begin returns the in-flight build, registering a new one when none is
// running. started is true for the caller that must run it.
func (ix *Indexer) begin() (b *build, started bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.inflight != nil {
		return ix.inflight, false
	}
	b = &build{done: make(chan struct{})}
	ix.inflight = b
	ix.building.Store(true)
	return b, true
}

func (ix *Indexer) finish(ctx context.Context, b *build) {
	b.index, b.err = ix.run(ctx)
	if b.err == nil {
		ix.current.Store(b.index)
	}

	ix.mu.Lock()
	ix.inflight = nil
	ix.building.Store(false)
	ix.mu.Unlock()

	close(b.done)
}

// Build scans the whole universe and publishes the result. A caller that
// arrives while a build is running waits for that build instead of
// starting another one.
func (ix *Indexer) Build(ctx context.Context) (*Index, error) {
	b, started := ix.begin()
	if started {
		ix.finish(ctx, b)
		return b.index, b.err
	}

	ix.logger.Debug("Joining in-flight index build", "waiters", b.joined.Add(1))
	select {
	case <-b.done:
		return b.index, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BuildDetached runs or joins a build like Build, but a new build runs on
// runCtx while ctx only bounds this caller's wait. A caller that gives up
// does not cancel the build for the other waiters.
func (ix *Indexer) BuildDetached(ctx, runCtx context.Context) (*Index, error) {
	b, started := ix.begin()
	if started {
		go ix.finish(runCtx, b)
	} else {
		ix.logger.Debug("Joining in-flight index build", "waiters", b.joined.Add(1))
	}

	select {
	case <-b.done:
		return b.index, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start runs a build in the background, or joins the running one, and
// returns a channel closed when it completes.
func (ix *Indexer) Start(ctx context.Context) <-chan struct{} {
	b, started := ix.begin()
	if started {
		go func() {
			ix.finish(ctx, b)
			if b.err != nil && !errors.Is(b.err, context.Canceled) {
				ix.logger.Error("Background index build failed", "error", b.err)
			}
		}()
	}
	return b.done
}

func (ix *Indexer) run(ctx context.Context) (*Index, error) {
	ctx, span := ix.tracer.Start(ctx, "universe.build", trace.WithAttributes(
		attribute.Int("workers", ix.opts.Workers),
	))
	defer span.End()

	logger := ix.logger.With("component", "universe_indexer", "operation", "build")
	logger.Info("Starting universe index build", "workers", ix.opts.Workers)
	start := time.Now()

	total := galaxy.UniverseHeight
	rows := make(chan int)
	var (
		mu     sync.Mutex
		merged partial
		done   atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(rows)
		for y := 0; y < total; y++ {
			select {
			case rows <- y:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < ix.opts.Workers; w++ {
		g.Go(func() error {
			local := &partial{}
			for y := range rows {
				p, err := ix.scanWithRetry(gctx, y)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					logger.Warn("Row failed after retries", "row", y, "error", err)
					local.failed = append(local.failed, y)
				} else {
					local.merge(p)
				}
				if ix.opts.Progress != nil {
					ix.opts.Progress(int(done.Add(1)), total)
				}
			}

			mu.Lock()
			merged.merge(local)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("Universe index build aborted", "error", err)
		return nil, err
	}

	merged.sortRowMajor()
	idx := &Index{
		Galaxies:   merged.galaxies,
		Systems:    merged.systems,
		Planets:    merged.planets,
		BuiltAt:    time.Now().UTC(),
		Duration:   time.Since(start),
		FailedRows: merged.failed,
	}

	counts := idx.Counts()
	span.SetAttributes(
		attribute.Int("galaxies", counts.Galaxies),
		attribute.Int("systems", counts.Systems),
		attribute.Int("planets", counts.Planets),
		attribute.Int("failed_rows", len(idx.FailedRows)),
	)
	logger.Info("Universe index built",
		"galaxies", humanize.Comma(int64(counts.Galaxies)),
		"systems", humanize.Comma(int64(counts.Systems)),
		"planets", humanize.Comma(int64(counts.Planets)),
		"failed_rows", len(idx.FailedRows),
		"duration", idx.Duration.String(),
	)
	return idx, nil
}

func (ix *Indexer) scanWithRetry(ctx context.Context, y int) (*partial, error) {
	var err error
	for attempt := 1; attempt <= ix.opts.RetryAttempts; attempt++ {
		var p *partial
		p, err = ix.safeScan(ctx, y)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ix.logger.Debug("Row scan failed", "row", y, "attempt", attempt, "error", err)
	}
	return nil, err
}

func (ix *Indexer) safeScan(ctx context.Context, y int) (p *partial, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row %d panicked: %v", y, r)
		}
	}()
	return ix.scanRow(ctx, y)
}

// scanRow enumerates every galaxy of universe row y down to its planets.
func scanRow(ctx context.Context, y int) (*partial, error) {
	p := &partial{}
	for _, g := range galaxy.InRow(y) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.galaxies = append(p.galaxies, g)
		for _, sys := range system.InGalaxy(g.Pos) {
			p.systems = append(p.systems, sys)
			p.planets = append(p.planets, planet.InSystem(sys)...)
		}
	}
	return p, nil
}
