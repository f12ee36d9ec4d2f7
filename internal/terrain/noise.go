package terrain

import (
	"math"

	"planetinfo-server/internal/hashing"
)

type gradient struct{ x, y float64 }

var gradients = [4]gradient{{-1, 1}, {-1, -1}, {1, 1}, {1, -1}}

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// perlin samples tileable gradient noise at (u, v) on a lattice of period
// freq. layer decorrelates independent noise fields.
func perlin(layer int32, freq int, u, v float64) float64 {
	fx, fy := math.Floor(u), math.Floor(v)
	i, j := int(fx), int(fy)
	tx, ty := u-fx, v-fy

	corner := func(di, dj int) float64 {
		h := hashing.HashTile(wrap(i+di, freq), wrap(j+dj, freq), freq, freq, layer)
		g := gradients[h%4]
		return g.x*(tx-float64(di)) + g.y*(ty-float64(dj))
	}

	sx, sy := fade(tx), fade(ty)
	top := lerp(corner(0, 0), corner(1, 0), sx)
	bottom := lerp(corner(0, 1), corner(1, 1), sx)
	return lerp(top, bottom, sy)
}
