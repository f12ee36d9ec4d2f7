package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"planetinfo-server/internal/auth"
	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/preview"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/universe"
	"planetinfo-server/internal/universe/sqlite"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-sixel"
)

// lookupPlanet resolves a key with the same grid and presence checks the
// HTTP API applies.
func lookupPlanet(ctx context.Context, e *env, key string) (*planet.Record, error) {
	return planet.NewService(planet.NewMemoryCache(1), e.logger).Get(ctx, key)
}

func runPlanet(ctx context.Context, e *env, args []string) error {
	pos, err := parseFlags(flag.NewFlagSet("planet", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	rec, err := lookupPlanet(ctx, e, pos[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func runGalaxies(_ context.Context, e *env, args []string) error {
	if _, err := parseFlags(flag.NewFlagSet("galaxies", flag.ContinueOnError), args, 0); err != nil {
		return err
	}
	all := galaxy.All()
	for _, g := range all {
		fmt.Fprintf(e.stdout, "%-28s %4d systems\n", g.MapKey, len(system.InGalaxy(g.Pos)))
	}
	fmt.Fprintf(e.stdout, "%d galaxies\n", len(all))
	return nil
}

// buildIndex runs a full universe scan, logging progress every tenth of the rows.
func buildIndex(ctx context.Context, e *env, workers int) (*universe.Index, error) {
	logger := e.logger
	started := time.Now()
	ix := universe.NewIndexer(universe.Options{
		Workers:       workers,
		RetryAttempts: e.cfg.Universe.RetryAttempts,
		Progress: func(done, total int) {
			if done%max(total/10, 1) == 0 {
				logger.Info("Scanning universe",
					"rows", fmt.Sprintf("%d/%d", done, total),
					"elapsed", humanize.RelTime(started, time.Now(), "", ""),
				)
			}
		},
	}, logger)
	return ix.Build(ctx)
}

func scanFlags(name string, e *env) (*flag.FlagSet, *int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	workers := fs.Int("workers", e.cfg.Universe.Workers, "index build workers (0 = GOMAXPROCS)")
	return fs, workers
}

func runScan(ctx context.Context, e *env, args []string) error {
	fs, workers := scanFlags("scan", e)
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	idx, err := buildIndex(ctx, e, *workers)
	if err != nil {
		return err
	}

	counts := idx.Counts()
	fmt.Fprintf(e.stdout, "galaxies  %s\n", humanize.Comma(int64(counts.Galaxies)))
	fmt.Fprintf(e.stdout, "systems   %s\n", humanize.Comma(int64(counts.Systems)))
	fmt.Fprintf(e.stdout, "planets   %s\n", humanize.Comma(int64(counts.Planets)))
	fmt.Fprintf(e.stdout, "duration  %s\n", idx.Duration.Round(time.Millisecond))

	kinds := make(map[string]int)
	for _, p := range idx.Planets {
		kinds[p.Kind.String()]++
	}
	printHistogram(e, kinds)

	if len(idx.FailedRows) > 0 {
		return fmt.Errorf("%d rows failed: %v", len(idx.FailedRows), idx.FailedRows)
	}
	return nil
}

func printHistogram(e *env, kinds map[string]int) {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(e.stdout, "  %-20s %s\n", name, humanize.Comma(int64(kinds[name])))
	}
}

func runDumpJSON(ctx context.Context, e *env, args []string) error {
	fs, workers := scanFlags("dump-json", e)
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, e, *workers)
	if err != nil {
		return err
	}

	f, err := os.Create(pos[0])
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(idx); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", pos[0], err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	info, err := os.Stat(pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "wrote %s (%s)\n", pos[0], humanize.Bytes(uint64(info.Size())))
	return nil
}

func runExportSQLite(ctx context.Context, e *env, args []string) error {
	fs, workers := scanFlags("export-sqlite", e)
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	idx, err := buildIndex(ctx, e, *workers)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(pos[0])
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			e.logger.Error("Failed to close sqlite store", "error", err)
		}
	}()

	if err := store.SaveIndex(ctx, idx); err != nil {
		return err
	}
	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	kinds, err := store.KindHistogram(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "exported %s galaxies, %s systems, %s planets to %s\n",
		humanize.Comma(int64(counts.Galaxies)),
		humanize.Comma(int64(counts.Systems)),
		humanize.Comma(int64(counts.Planets)),
		pos[0],
	)
	printHistogram(e, kinds)
	return nil
}

func runPreview(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	out := fs.String("o", "", "write the PNG to this file")
	tile := fs.Int("tile", e.cfg.Preview.TilePx, "pixels per terrain cell")
	useSixel := fs.Bool("sixel", false, "draw the preview on the terminal")
	assets := fs.String("assets", e.cfg.Preview.AssetDir, "texture directory")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	if *out == "" && !*useSixel {
		return errUsage
	}

	rec, err := lookupPlanet(ctx, e, pos[0])
	if err != nil {
		return err
	}

	textures := preview.NewTextureSet(os.DirFS(*assets), e.logger)
	compositor := preview.NewCompositor(textures, *tile, e.logger)

	if *out != "" {
		var buf bytes.Buffer
		if err := compositor.Export(ctx, &buf, rec, rec.PlanetSize); err != nil {
			return err
		}
		if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "wrote %s (%s)\n", *out, humanize.Bytes(uint64(buf.Len())))
	}

	if *useSixel {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("-sixel needs a terminal on stdout")
		}
		img, err := compositor.Compose(ctx, rec, rec.PlanetSize)
		if err != nil {
			return err
		}
		enc := sixel.NewEncoder(e.stdout)
		enc.Dither = false
		if err := enc.Encode(img); err != nil {
			return fmt.Errorf("failed to encode sixel: %w", err)
		}
		fmt.Fprintln(e.stdout)
	}
	return nil
}

func runTextures(_ context.Context, e *env, args []string) error {
	pos, err := parseFlags(flag.NewFlagSet("textures", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	n, err := preview.WritePlaceholders(pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "wrote %d placeholder textures to %s\n", n, pos[0])
	return nil
}

func runToken(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "admin", "token subject")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	if !e.cfg.AdminEnabled() {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	signer, err := auth.NewSigner(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenExpiration)
	if err != nil {
		return err
	}
	token, err := signer.GenerateAdminToken(*subject)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, token)
	return nil
}
