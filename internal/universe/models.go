package universe

import (
	"cmp"
	"slices"
	"time"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/system"
)

// Index is a materialized snapshot of every galaxy, star system and
// playable planet of the universe. It is immutable once published.
type Index struct {
	Galaxies   []galaxy.Galaxy     `json:"galaxies"`
	Systems    []system.StarSystem `json:"systems"`
	Planets    []planet.Record     `json:"planets"`
	BuiltAt    time.Time           `json:"built_at"`
	Duration   time.Duration       `json:"duration"`
	FailedRows []int               `json:"failed_rows,omitempty"`
}

type Counts struct {
	Galaxies int `json:"galaxies"`
	Systems  int `json:"systems"`
	Planets  int `json:"planets"`
}

func (idx *Index) Counts() Counts {
	if idx == nil {
		return Counts{}
	}
	return Counts{
		Galaxies: len(idx.Galaxies),
		Systems:  len(idx.Systems),
		Planets:  len(idx.Planets),
	}
}

// Complete reports whether every row of the universe made it into the index.
func (idx *Index) Complete() bool {
	return idx != nil && len(idx.FailedRows) == 0
}

type State string

const (
	StateEmpty    State = "empty"
	StateBuilding State = "building"
	StateReady    State = "ready"
)

type Status struct {
	State      State     `json:"state"`
	Counts     Counts    `json:"counts"`
	BuiltAt    time.Time `json:"built_at,omitzero"`
	DurationMS int64     `json:"duration_ms"`
	FailedRows []int     `json:"failed_rows,omitempty"`
}

// partial is one worker's private share of a build.
type partial struct {
	galaxies []galaxy.Galaxy
	systems  []system.StarSystem
	planets  []planet.Record
	failed   []int
}

func (p *partial) merge(o *partial) {
	p.galaxies = append(p.galaxies, o.galaxies...)
	p.systems = append(p.systems, o.systems...)
	p.planets = append(p.planets, o.planets...)
	p.failed = append(p.failed, o.failed...)
}

func compareCoord(a, b mapkey.Coord) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// sortRowMajor puts merged results back into universe row-major order.
func (p *partial) sortRowMajor() {
	slices.SortFunc(p.galaxies, func(a, b galaxy.Galaxy) int {
		return compareCoord(a.Pos, b.Pos)
	})
	slices.SortFunc(p.systems, func(a, b system.StarSystem) int {
		if c := compareCoord(a.GalaxyPos, b.GalaxyPos); c != 0 {
			return c
		}
		return compareCoord(a.Pos, b.Pos)
	})
	slices.SortFunc(p.planets, func(a, b planet.Record) int {
		if c := compareCoord(a.GalaxyPos, b.GalaxyPos); c != 0 {
			return c
		}
		if c := compareCoord(a.StarSystemPos, b.StarSystemPos); c != 0 {
			return c
		}
		return compareCoord(a.PlanetPos, b.PlanetPos)
	})
	slices.Sort(p.failed)
}
