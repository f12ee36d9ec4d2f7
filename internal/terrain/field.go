// Package terrain synthesizes the surface of a playable planet from layered
// gradient noise and classifies each lattice cell into a biome.
package terrain

import (
	"fmt"
	"math"

	"planetinfo-server/internal/hashing"
)

type Biome int

const (
	Plain Biome = iota
	Forest
	Water
	Mountain
)

// Biomes lists every biome in declaration order.
var Biomes = []Biome{Plain, Forest, Water, Mountain}

var biomeNames = [...]string{"plain", "forest", "water", "mountain"}

// Asset names used for biome textures.
var biomeAssets = [...]string{"Grass", "Tree", "WaterSurface", "Hill"}

func (b Biome) String() string {
	if b < 0 || int(b) >= len(biomeNames) {
		return fmt.Sprintf("Biome(%d)", int(b))
	}
	return biomeNames[b]
}

// Asset is the texture suffix of the biome, e.g. "Grass" for Plain.
func (b Biome) Asset() string {
	if b < 0 || int(b) >= len(biomeAssets) {
		return ""
	}
	return biomeAssets[b]
}

func (b Biome) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Biome) UnmarshalText(text []byte) error {
	parsed, err := ParseBiome(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func ParseBiome(name string) (Biome, error) {
	for i, n := range biomeNames {
		if n == name {
			return Biome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown biome %q", name)
}

const (
	minAltitude   = -10000
	altitudeSpan  = 19500
	moistureScale = 100

	forestMoisture = 55

	latitudeAmplitude = 70
	latitudeShift     = 20

	// temperatureNoiseWeight keeps the temperature noise layer sampled but
	// without effect on the result.
	temperatureNoiseWeight = 0
)

// Layer offsets added to the planet hash, one per noise field.
const (
	layerAltitude0 = 5 + iota
	layerAltitude1
	layerAltitude2
	layerMoisture
	layerTemperature
)

type Sample struct {
	Altitude    float64 `json:"altitude"`
	Moisture    float64 `json:"moisture"`
	Temperature float64 `json:"temperature"`
	Biome       Biome   `json:"biome"`
}

// Field is the terrain of one planet over a size x size lattice.
type Field struct {
	size    int
	baseAlt int
	baseMoi int
	seed    int32
}

// New prepares the terrain field of the planet keyed by key.
func New(key string, size int) (*Field, error) {
	if size <= 0 {
		return nil, fmt.Errorf("terrain size must be positive, got %d", size)
	}
	mapHash := hashing.HashString(key)
	return &Field{
		size:    size,
		baseAlt: 5 + int(mapHash%11),
		baseMoi: 7 + int(mapHash%17),
		seed:    hashing.AsInt32(mapHash),
	}, nil
}

func (f *Field) Size() int         { return f.size }
func (f *Field) BaseAltitude() int { return f.baseAlt }
func (f *Field) BaseMoisture() int { return f.baseMoi }

func (f *Field) noise(offset int32, freq, x, y int) float64 {
	u := float64(x) * float64(freq) / float64(f.size)
	v := float64(y) * float64(freq) / float64(f.size)
	return perlin(f.seed+offset, freq, u, v)
}

// Sample evaluates every field at lattice cell (x, y).
func (f *Field) Sample(x, y int) Sample {
	n0 := f.noise(layerAltitude0, f.baseAlt, x, y)
	n1 := f.noise(layerAltitude1, 2*f.baseAlt, x, y)
	n2 := f.noise(layerAltitude2, 4*f.baseAlt, x, y)
	altitude := minAltitude + ((4*n0+2*n1+n2+7)/14)*altitudeSpan

	moisture := ((f.noise(layerMoisture, f.baseMoi, x, y) + 1) / 2) * moistureScale

	latitude := latitudeAmplitude*math.Sin(math.Pi*float64(y)/float64(f.size)) - latitudeShift
	temperature := latitude + temperatureNoiseWeight*f.noise(layerTemperature, f.baseAlt, x, y)

	return Sample{
		Altitude:    altitude,
		Moisture:    moisture,
		Temperature: temperature,
		Biome:       classify(altitude, moisture, temperature),
	}
}

func (f *Field) Classify(x, y int) Biome {
	return f.Sample(x, y).Biome
}

// Grid classifies the whole lattice, indexed [y][x].
func (f *Field) Grid() [][]Biome {
	grid := make([][]Biome, f.size)
	for y := range grid {
		row := make([]Biome, f.size)
		for x := range row {
			row[x] = f.Classify(x, y)
		}
		grid[y] = row
	}
	return grid
}

func classify(altitude, moisture, temperature float64) Biome {
	switch {
	case altitude <= 0:
		return Water
	case temperature > 0 && moisture > forestMoisture:
		return Forest
	case temperature <= 0:
		return Mountain
	default:
		return Plain
	}
}
