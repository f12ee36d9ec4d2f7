package planet

import (
	"fmt"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/hashing"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/system"
)

// Compute derives the record for a planet MapKey. Keys whose tile is not
// playable fail with ErrNotTerrestrial.
func Compute(key string) (*Record, error) {
	coords, err := mapkey.ParseLevel(key, mapkey.Planet)
	if err != nil {
		return nil, err
	}
	return compute(key, system.Lookup(coords[0], coords[1]), coords[2])
}

// InSystem returns the playable planets of sys in row-major tile order.
func InSystem(sys system.StarSystem) []Record {
	var out []Record
	for y := 0; y < system.TileGrid; y++ {
		for x := 0; x < system.TileGrid; x++ {
			pos := mapkey.Coord{X: x, Y: y}
			rec, err := compute(mapkey.PlanetKey(sys.GalaxyPos, sys.Pos, pos), sys, pos)
			if err != nil {
				continue
			}
			out = append(out, *rec)
		}
	}
	return out
}

func compute(key string, sys system.StarSystem, pos mapkey.Coord) (*Record, error) {
	res := celestial.Classify(sys.MapKey, pos, sys.StarPositions)
	if !res.Kind.Playable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotTerrestrial, key, res.Kind)
	}

	rec := &Record{
		MapKey:        key,
		GalaxyPos:     sys.GalaxyPos,
		StarSystemPos: sys.Pos,
		PlanetPos:     pos,
		StarType:      sys.StarType,
		Kind:          res.Kind,
	}
	derive(rec, res.TileHash)
	return rec, nil
}

func derive(rec *Record, tileHash uint32) {
	again := hashing.HashUint(hashing.HashUint(tileHash))
	slowed := 1 + hashing.Abs(hashing.CMod(hashing.AsInt32(again), 7))
	rec.SecondsForADay = dayNumerator / int(1+slowed)

	rec.DaysForAMonth = minDaysPerMonth + int(hashing.HashString(rec.MapKey)%daysPerMonthSpan)
	rec.MonthForAYear = monthsPerYear
	rec.DaysForAYear = monthsPerYear * rec.DaysForAMonth

	self := hashing.HashString(mapkey.SelfSuffix(rec.MapKey))
	rec.PlanetSize = minPlanetSize + int(self%planetSizeRange)
	rec.MineralDensity = minMineral + int(hashing.AddSalt(self, mineralSalt)%mineralRange)
}
