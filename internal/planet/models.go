package planet

import (
	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/system"
)

const (
	dayNumerator     = 480
	monthsPerYear    = 12
	mineralSalt      = 2641779086
	minPlanetSize    = 50
	planetSizeRange  = 100
	minMineral       = 3
	mineralRange     = 27
	minDaysPerMonth  = 2
	daysPerMonthSpan = 15
)

// Record is everything the generator knows about a playable planet.
type Record struct {
	MapKey         string          `json:"map_key"`
	GalaxyPos      mapkey.Coord    `json:"galaxy_pos"`
	StarSystemPos  mapkey.Coord    `json:"star_system_pos"`
	PlanetPos      mapkey.Coord    `json:"planet_pos"`
	StarType       system.StarType `json:"star_type"`
	Kind           celestial.Kind  `json:"celestial_kind"`
	SecondsForADay int             `json:"seconds_for_a_day"`
	DaysForAMonth  int             `json:"days_for_a_month"`
	DaysForAYear   int             `json:"days_for_a_year"`
	MonthForAYear  int             `json:"month_for_a_year"`
	PlanetSize     int             `json:"planet_size"`
	MineralDensity int             `json:"mineral_density"`
}

// SystemKey is the MapKey of the star system holding the planet.
func (r Record) SystemKey() string {
	return mapkey.StarSystemKey(r.GalaxyPos, r.StarSystemPos)
}
