package celestial

import (
	"planetinfo-server/internal/hashing"
	"planetinfo-server/internal/mapkey"
)

// TileGrid is the side of a star system's tile grid.
const TileGrid = 32

// Gate is one step of the cascade: the running hash is re-hashed, then
// tested against Divisor. A gate passes when the remainder's zero-ness
// matches WantZero.
type Gate struct {
	Divisor  uint32
	WantZero bool
	Outcome  Kind
}

func (g Gate) Pass(v uint32) bool {
	return (v%g.Divisor == 0) == g.WantZero
}

// Order is load-bearing: the first gate to pass decides the kind.
var gates = []Gate{
	{Divisor: 50, WantZero: false, Outcome: SpaceEmptiness},
	{Divisor: 2, WantZero: false, Outcome: Asteroid},
	{Divisor: 40, WantZero: true, Outcome: PlanetGaia},
	{Divisor: 40, WantZero: true, Outcome: PlanetSuperDimensional},
	{Divisor: 10, WantZero: true, Outcome: GasGiant},
	{Divisor: 9, WantZero: true, Outcome: GasGiantRinged},
	{Divisor: 3, WantZero: true, Outcome: PlanetContinental},
	{Divisor: 2, WantZero: true, Outcome: PlanetMolten},
	{Divisor: 4, WantZero: true, Outcome: PlanetBarren},
	{Divisor: 3, WantZero: true, Outcome: PlanetArid},
	{Divisor: 2, WantZero: true, Outcome: PlanetFrozen},
}

// fallthroughKind is the outcome when no gate passes.
const fallthroughKind = PlanetOcean

// Gates returns a copy of the cascade in evaluation order.
func Gates() []Gate {
	out := make([]Gate, len(gates))
	copy(out, gates)
	return out
}

// TileHash seeds the cascade for tile of the system keyed by systemKey.
func TileHash(systemKey string, tile mapkey.Coord) uint32 {
	offset := hashing.AsInt32(hashing.HashString(systemKey))
	return hashing.HashTile(tile.X, tile.Y, TileGrid, TileGrid, offset)
}

// Cascade walks the gate table starting from tileHash.
func Cascade(tileHash uint32) Kind {
	hashcode := hashing.HashUint(tileHash)
	for _, g := range gates {
		hashcode = hashing.HashUint(hashcode)
		if g.Pass(hashcode) {
			return g.Outcome
		}
	}
	return fallthroughKind
}

type Result struct {
	Kind Kind
	// TileHash is zero for star tiles, which never enter the cascade.
	TileHash uint32
}

// Classify decides what occupies tile. Tiles on a star are Star without
// consulting the cascade.
func Classify(systemKey string, tile mapkey.Coord, stars []mapkey.Coord) Result {
	for _, s := range stars {
		if s == tile {
			return Result{Kind: Star}
		}
	}
	h := TileHash(systemKey, tile)
	return Result{Kind: Cascade(h), TileHash: h}
}

type Body struct {
	Pos  mapkey.Coord `json:"pos"`
	Kind Kind         `json:"kind"`
}

// Survey lists every non-empty tile of a system in row-major order.
func Survey(systemKey string, stars []mapkey.Coord) []Body {
	var bodies []Body
	for y := 0; y < TileGrid; y++ {
		for x := 0; x < TileGrid; x++ {
			tile := mapkey.Coord{X: x, Y: y}
			if r := Classify(systemKey, tile, stars); r.Kind != SpaceEmptiness {
				bodies = append(bodies, Body{Pos: tile, Kind: r.Kind})
			}
		}
	}
	return bodies
}
