package galaxy

import (
	"planetinfo-server/internal/hashing"
	"planetinfo-server/internal/mapkey"
)

var universeOffset = hashing.AsInt32(hashing.HashString(mapkey.UniverseKey()))

// Exists reports whether the universe cell (x, y) holds a galaxy.
func Exists(x, y int) bool {
	if !InGrid(x, y) {
		return false
	}
	return hashing.HashTile(x, y, UniverseWidth, UniverseHeight, universeOffset)%Density == 0
}

// InGrid reports whether (x, y) lies inside the universe grid.
func InGrid(x, y int) bool {
	return x >= 0 && y >= 0 && x < UniverseWidth && y < UniverseHeight
}

// InRow returns the galaxies of universe row y in ascending x.
func InRow(y int) []Galaxy {
	var out []Galaxy
	for x := 0; x < UniverseWidth; x++ {
		if Exists(x, y) {
			out = append(out, newGalaxy(mapkey.Coord{X: x, Y: y}))
		}
	}
	return out
}

// All returns every galaxy of the universe in row-major order.
func All() []Galaxy {
	var out []Galaxy
	for y := 0; y < UniverseHeight; y++ {
		out = append(out, InRow(y)...)
	}
	return out
}
