package galaxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planetinfo-server/internal/mapkey"
)

func TestExists_KnownGalaxies(t *testing.T) {
	for _, pos := range []mapkey.Coord{{X: 1, Y: 4}, {X: 97, Y: 11}, {X: 52, Y: 0}, {X: 18, Y: 2}} {
		assert.True(t, Exists(pos.X, pos.Y), "expected galaxy at %s", pos)
	}
	assert.False(t, Exists(0, 0))
}

func TestExists_OutsideGrid(t *testing.T) {
	assert.False(t, Exists(-1, 4))
	assert.False(t, Exists(100, 4))
	assert.False(t, Exists(1, 100))
}

func TestAll_CountAndOrder(t *testing.T) {
	galaxies := All()
	assert.Len(t, galaxies, 196)

	first := []mapkey.Coord{{X: 52, Y: 0}, {X: 18, Y: 2}, {X: 1, Y: 4}, {X: 3, Y: 4}, {X: 4, Y: 4}}
	for i, pos := range first {
		assert.Equal(t, pos, galaxies[i].Pos)
	}
	assert.Equal(t, "Weathering.MapOfGalaxy#=52,0", galaxies[0].MapKey)
}

func TestInRow(t *testing.T) {
	row := InRow(4)
	var xs []int
	for _, g := range row {
		xs = append(xs, g.Pos.X)
	}
	assert.Equal(t, []int{1, 3, 4, 26, 30, 31, 60}, xs[:7])
}
