package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenKey = "Weathering.MapOfPlanet#=1,4=14,93=24,31"

func TestFade(t *testing.T) {
	assert.Equal(t, 0.0, fade(0))
	assert.Equal(t, 1.0, fade(1))
	assert.InDelta(t, 0.5, fade(0.5), 1e-12)
	assert.InDelta(t, 0.05792, fade(0.2), 1e-12)
}

func TestPerlin_ZeroOnLattice(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.0, perlin(42, 7, float64(i), float64(2*i)))
	}
}

func TestPerlin_Tiles(t *testing.T) {
	a := perlin(123, 9, 0.3, 0.7)
	assert.InDelta(t, 0.10918793088, a, 1e-9)
	assert.InDelta(t, a, perlin(123, 9, 9.3, 0.7), 1e-9)
	assert.InDelta(t, a, perlin(123, 9, 0.3, 9.7), 1e-9)
}

func TestNew(t *testing.T) {
	f, err := New(goldenKey, 142)
	require.NoError(t, err)
	assert.Equal(t, 9, f.BaseAltitude())
	assert.Equal(t, 21, f.BaseMoisture())
	assert.Equal(t, 142, f.Size())

	f, err = New("Weathering.MapOfPlanet#=97,11=18,1=20,6", 120)
	require.NoError(t, err)
	assert.Equal(t, 12, f.BaseAltitude())
	assert.Equal(t, 15, f.BaseMoisture())

	_, err = New(goldenKey, 0)
	assert.Error(t, err)
}

func TestSample_KnownCells(t *testing.T) {
	f, err := New(goldenKey, 142)
	require.NoError(t, err)

	tests := []struct {
		x, y     int
		altitude float64
		moisture float64
		biome    Biome
	}{
		{0, 0, -250, 50, Water},
		{10, 20, 318.27097898, 47.00075298, Plain},
		{50, 60, -508.25884732, 79.17055038, Water},
		{5, 140, 369.94588262, 35.14397119, Mountain},
		{72, 41, 3224.30594533, 74.08801082, Forest},
		{126, 27, 1698.32702554, 72.15207027, Forest},
	}
	for _, tt := range tests {
		s := f.Sample(tt.x, tt.y)
		assert.InDelta(t, tt.altitude, s.Altitude, 1e-6, "altitude at (%d,%d)", tt.x, tt.y)
		assert.InDelta(t, tt.moisture, s.Moisture, 1e-6, "moisture at (%d,%d)", tt.x, tt.y)
		assert.Equal(t, tt.biome, s.Biome, "biome at (%d,%d)", tt.x, tt.y)
	}
}

func TestSample_TemperatureFollowsLatitude(t *testing.T) {
	f, err := New(goldenKey, 142)
	require.NoError(t, err)

	pole := f.Sample(10, 0).Temperature
	equator := f.Sample(10, 71).Temperature
	assert.Equal(t, -20.0, pole)
	assert.InDelta(t, 50, equator, 1e-9)

	// noise layer carries no weight: temperature is constant along a row
	assert.Equal(t, f.Sample(3, 40).Temperature, f.Sample(90, 40).Temperature)
	assert.InDelta(t, 70*math.Sin(math.Pi*40/142)-20, f.Sample(3, 40).Temperature, 1e-9)
}

func TestGrid_CoversAllBiomes(t *testing.T) {
	f, err := New(goldenKey, 142)
	require.NoError(t, err)

	grid := f.Grid()
	require.Len(t, grid, 142)

	counts := map[Biome]int{}
	for y, row := range grid {
		require.Len(t, row, 142)
		for x, b := range row {
			counts[b]++
			if x%37 == 0 && y%41 == 0 {
				assert.Equal(t, f.Classify(x, y), b)
			}
		}
	}
	for _, b := range Biomes {
		assert.Positive(t, counts[b], b.String())
	}
	assert.Equal(t, 142*142, counts[Water]+counts[Plain]+counts[Forest]+counts[Mountain])
	assert.InDelta(t, 11131, counts[Water], 20)
}

func TestClassify_Rules(t *testing.T) {
	assert.Equal(t, Water, classify(0, 90, 30))
	assert.Equal(t, Water, classify(-1, 10, -30))
	assert.Equal(t, Forest, classify(1, 56, 1))
	assert.Equal(t, Plain, classify(1, 55, 1))
	assert.Equal(t, Mountain, classify(1, 90, 0))
	assert.Equal(t, Mountain, classify(5000, 10, -5))
}

func TestBiome_Names(t *testing.T) {
	assert.Equal(t, "Grass", Plain.Asset())
	assert.Equal(t, "Tree", Forest.Asset())
	assert.Equal(t, "WaterSurface", Water.Asset())
	assert.Equal(t, "Hill", Mountain.Asset())
	assert.Equal(t, "mountain", Mountain.String())
	assert.Equal(t, "Biome(9)", Biome(9).String())

	b, err := ParseBiome("water")
	require.NoError(t, err)
	assert.Equal(t, Water, b)
	_, err = ParseBiome("lava")
	assert.Error(t, err)
}
