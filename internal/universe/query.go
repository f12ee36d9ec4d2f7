package universe

import (
	"cmp"
	"fmt"
	"slices"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/system"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Filter narrows planets down. Nil fields match everything.
type Filter struct {
	Kind       *celestial.Kind
	StarType   *system.StarType
	MinSize    *int
	MaxSize    *int
	MinMineral *int
	MaxMineral *int
}

func (f Filter) Match(p *planet.Record) bool {
	switch {
	case f.Kind != nil && p.Kind != *f.Kind:
		return false
	case f.StarType != nil && p.StarType != *f.StarType:
		return false
	case f.MinSize != nil && p.PlanetSize < *f.MinSize:
		return false
	case f.MaxSize != nil && p.PlanetSize > *f.MaxSize:
		return false
	case f.MinMineral != nil && p.MineralDensity < *f.MinMineral:
		return false
	case f.MaxMineral != nil && p.MineralDensity > *f.MaxMineral:
		return false
	}
	return true
}

type SortField string

const (
	SortMapKey         SortField = "map_key"
	SortPlanetSize     SortField = "planet_size"
	SortMineralDensity SortField = "mineral_density"
	SortSecondsForADay SortField = "seconds_for_a_day"
	SortDaysForAYear   SortField = "days_for_a_year"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case "":
		return SortMapKey, nil
	case SortMapKey, SortPlanetSize, SortMineralDensity, SortSecondsForADay, SortDaysForAYear:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

func (f SortField) value(p *planet.Record) int {
	switch f {
	case SortPlanetSize:
		return p.PlanetSize
	case SortMineralDensity:
		return p.MineralDensity
	case SortSecondsForADay:
		return p.SecondsForADay
	case SortDaysForAYear:
		return p.DaysForAYear
	}
	return 0
}

// FilterPlanets returns the planets matching f, keeping their order.
func FilterPlanets(planets []planet.Record, f Filter) []planet.Record {
	var out []planet.Record
	for i := range planets {
		if f.Match(&planets[i]) {
			out = append(out, planets[i])
		}
	}
	return out
}

// SortPlanets sorts in place by field. Equal values are ordered by map key
// ascending regardless of desc.
func SortPlanets(planets []planet.Record, field SortField, desc bool) {
	slices.SortStableFunc(planets, func(a, b planet.Record) int {
		var c int
		if field == SortMapKey || field == "" {
			c = cmp.Compare(a.MapKey, b.MapKey)
			if desc {
				c = -c
			}
			return c
		}
		c = cmp.Compare(field.value(&a), field.value(&b))
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.MapKey, b.MapKey)
	})
}

type Query struct {
	Filter Filter
	Sort   SortField
	Desc   bool
	Offset int
	Limit  int
}

type Page struct {
	Items  []planet.Record `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// QueryPlanets filters, sorts and pages the planets of the index.
func (idx *Index) QueryPlanets(q Query) Page {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	offset := max(q.Offset, 0)

	matched := FilterPlanets(idx.Planets, q.Filter)
	SortPlanets(matched, q.Sort, q.Desc)

	page := Page{Items: []planet.Record{}, Total: len(matched), Offset: offset, Limit: limit}
	if offset < len(matched) {
		page.Items = matched[offset:min(offset+limit, len(matched))]
	}
	return page
}
