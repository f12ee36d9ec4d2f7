package system

import (
	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/hashing"
	"planetinfo-server/internal/mapkey"
)

// Exists reports whether cell (x, y) of the galaxy grid at galaxyPos holds a
// star system. It does not check that the galaxy itself exists.
func Exists(galaxyPos mapkey.Coord, x, y int) bool {
	if !InGrid(x, y) {
		return false
	}
	offset := hashing.AsInt32(hashing.HashString(mapkey.GalaxyKey(galaxyPos)))
	return hashing.HashTile(x, y, GalaxyWidth, GalaxyHeight, offset)%Density == 0
}

// InGrid reports whether (x, y) lies inside a galaxy's star system grid.
func InGrid(x, y int) bool {
	return x >= 0 && y >= 0 && x < GalaxyWidth && y < GalaxyHeight
}

// StarPositions returns the one or two star tiles of the system keyed by key.
func StarPositions(key string) []mapkey.Coord {
	h := hashing.HashString(key)
	primary := decompose(hashing.Abs(hashing.AsInt32(h)))
	secondary := decompose(hashing.Abs(hashing.AsInt32(hashing.HashUint(h))))
	if primary == secondary {
		return []mapkey.Coord{primary}
	}
	return []mapkey.Coord{primary, secondary}
}

// StarTypeOf picks the star colour from the key's self-suffix.
func StarTypeOf(key string) StarType {
	return StarType(hashing.HashString(mapkey.SelfSuffix(key)) % uint32(len(starTypeNames)))
}

func decompose(v int64) mapkey.Coord {
	cell := int(v % (TileGrid * TileGrid))
	return mapkey.Coord{X: cell % TileGrid, Y: cell / TileGrid}
}

// InGalaxy returns the star systems of the galaxy at galaxyPos in row-major order.
func InGalaxy(galaxyPos mapkey.Coord) []StarSystem {
	if !galaxy.Exists(galaxyPos.X, galaxyPos.Y) {
		return nil
	}
	var out []StarSystem
	for y := 0; y < GalaxyHeight; y++ {
		for x := 0; x < GalaxyWidth; x++ {
			if Exists(galaxyPos, x, y) {
				out = append(out, newStarSystem(galaxyPos, mapkey.Coord{X: x, Y: y}))
			}
		}
	}
	return out
}

// Lookup builds the record for the system at (galaxyPos, pos) without
// checking presence.
func Lookup(galaxyPos, pos mapkey.Coord) StarSystem {
	return newStarSystem(galaxyPos, pos)
}
