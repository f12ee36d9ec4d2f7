package galaxy

import (
	"planetinfo-server/internal/mapkey"
)

const (
	// UniverseWidth and UniverseHeight bound the galaxy grid of the universe.
	UniverseWidth  = 100
	UniverseHeight = 100
	// Density: one in Density universe cells holds a galaxy.
	Density = 50
)

type Galaxy struct {
	Pos    mapkey.Coord `json:"pos"`
	MapKey string       `json:"map_key"`
}

func newGalaxy(pos mapkey.Coord) Galaxy {
	return Galaxy{
		Pos:    pos,
		MapKey: mapkey.GalaxyKey(pos),
	}
}
