package system

import (
	"fmt"

	"planetinfo-server/internal/mapkey"
)

const (
	// GalaxyWidth and GalaxyHeight bound the star system grid of a galaxy.
	GalaxyWidth  = 100
	GalaxyHeight = 100
	// Density: one in Density galaxy cells holds a star system.
	Density = 200

	// TileGrid is the side of the tile grid inside a star system.
	TileGrid = 32
)

type StarType int

const (
	Blue StarType = iota
	White
	Yellow
	Orange
	Red
)

var starTypeNames = [...]string{"Blue", "White", "Yellow", "Orange", "Red"}

// StarTypes lists every star type in index order.
var StarTypes = []StarType{Blue, White, Yellow, Orange, Red}

func (t StarType) String() string {
	if t < 0 || int(t) >= len(starTypeNames) {
		return fmt.Sprintf("StarType(%d)", int(t))
	}
	return starTypeNames[t]
}

func (t StarType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *StarType) UnmarshalText(text []byte) error {
	parsed, err := ParseStarType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseStarType maps a star type name back to its value.
func ParseStarType(name string) (StarType, error) {
	for i, n := range starTypeNames {
		if n == name {
			return StarType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown star type %q", name)
}

type StarSystem struct {
	GalaxyPos     mapkey.Coord   `json:"galaxy_pos"`
	Pos           mapkey.Coord   `json:"pos"`
	MapKey        string         `json:"map_key"`
	StarType      StarType       `json:"star_type"`
	StarPositions []mapkey.Coord `json:"star_positions"`
}

// Binary reports whether the system has two distinct stars.
func (s StarSystem) Binary() bool {
	return len(s.StarPositions) == 2
}

// IsStar reports whether tile lies on one of the system's stars.
func (s StarSystem) IsStar(tile mapkey.Coord) bool {
	for _, p := range s.StarPositions {
		if p == tile {
			return true
		}
	}
	return false
}

func newStarSystem(galaxyPos, pos mapkey.Coord) StarSystem {
	key := mapkey.StarSystemKey(galaxyPos, pos)
	return StarSystem{
		GalaxyPos:     galaxyPos,
		Pos:           pos,
		MapKey:        key,
		StarType:      StarTypeOf(key),
		StarPositions: StarPositions(key),
	}
}
