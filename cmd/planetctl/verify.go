package main

import (
	"context"
	"flag"
	"fmt"
	"math"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/hashing"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/terrain"
)

const goldenPlanet = "Weathering.MapOfPlanet#=1,4=14,93=24,31"

type check struct {
	name string
	fn   func() error
}

func expect[T comparable](what string, got, want T) error {
	if got != want {
		return fmt.Errorf("%s: got %v, want %v", what, got, want)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var checks = []check{
	{"hashing", func() error {
		return firstErr(
			expect("HashUint(0)", hashing.HashUint(0), 3232319850),
			expect("HashString(universe)", hashing.HashString(mapkey.UniverseKey()), 999406192),
			expect("HashString(planet)", hashing.HashString(goldenPlanet), 3394689588),
		)
	}},
	{"galaxy presence", func() error {
		systems := system.InGalaxy(mapkey.Coord{X: 1, Y: 4})
		if err := firstErr(
			expect("galaxy (1,4) exists", galaxy.Exists(1, 4), true),
			expect("systems in (1,4)", len(systems), 54),
		); err != nil {
			return err
		}
		return expect("first system", systems[0].Pos, mapkey.Coord{X: 18, Y: 2})
	}},
	{"star system geometry", func() error {
		sys := system.Lookup(mapkey.Coord{X: 1, Y: 4}, mapkey.Coord{X: 14, Y: 93})
		if err := firstErr(
			expect("star type", sys.StarType, system.Orange),
			expect("binary", sys.Binary(), true),
		); err != nil {
			return err
		}
		return firstErr(
			expect("primary star", sys.StarPositions[0], mapkey.Coord{X: 17, Y: 14}),
			expect("secondary star", sys.StarPositions[1], mapkey.Coord{X: 16, Y: 10}),
			expect("bodies", len(celestial.Survey(sys.MapKey, sys.StarPositions)), 29),
			expect("playable planets", len(planet.InSystem(sys)), 15),
		)
	}},
	{"planet derive", func() error {
		rec, err := planet.Compute(goldenPlanet)
		if err != nil {
			return err
		}
		return firstErr(
			expect("kind", rec.Kind, celestial.PlanetContinental),
			expect("star type", rec.StarType, system.Orange),
			expect("seconds for a day", rec.SecondsForADay, 160),
			expect("days for a year", rec.DaysForAYear, 60),
			expect("days for a month", rec.DaysForAMonth, 5),
			expect("planet size", rec.PlanetSize, 142),
			expect("mineral density", rec.MineralDensity, 5),
		)
	}},
	{"terrain", func() error {
		f, err := terrain.New(goldenPlanet, 142)
		if err != nil {
			return err
		}
		s := f.Sample(72, 41)
		if math.Abs(s.Altitude-3224.30594533) > 1e-6 {
			return fmt.Errorf("altitude at (72,41): got %.8f, want 3224.30594533", s.Altitude)
		}
		return expect("biome at (72,41)", s.Biome, terrain.Forest)
	}},
}

func runVerify(_ context.Context, e *env, args []string) error {
	if _, err := parseFlags(flag.NewFlagSet("verify", flag.ContinueOnError), args, 0); err != nil {
		return err
	}

	failed := 0
	for _, c := range checks {
		if err := c.fn(); err != nil {
			failed++
			fmt.Fprintf(e.stdout, "FAIL  %s: %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(e.stdout, "ok    %s\n", c.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}
