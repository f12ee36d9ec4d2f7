// Package celestial classifies the tiles of a star system into celestial
// bodies with an ordered cascade of hash gates.
package celestial

import "fmt"

type Kind int

const (
	SpaceEmptiness Kind = iota
	Star
	Asteroid
	PlanetGaia
	PlanetSuperDimensional
	GasGiant
	GasGiantRinged
	PlanetContinental
	PlanetMolten
	PlanetBarren
	PlanetArid
	PlanetFrozen
	PlanetOcean
)

var kindNames = [...]string{
	SpaceEmptiness:         "SpaceEmptiness",
	Star:                   "Star",
	Asteroid:               "Asteroid",
	PlanetGaia:             "PlanetGaia",
	PlanetSuperDimensional: "PlanetSuperDimensional",
	GasGiant:               "GasGiant",
	GasGiantRinged:         "GasGiantRinged",
	PlanetContinental:      "PlanetContinental",
	PlanetMolten:           "PlanetMolten",
	PlanetBarren:           "PlanetBarren",
	PlanetArid:             "PlanetArid",
	PlanetFrozen:           "PlanetFrozen",
	PlanetOcean:            "PlanetOcean",
}

// PlayableKinds are the terrestrial kinds that receive a planet record.
var PlayableKinds = []Kind{PlanetBarren, PlanetArid, PlanetOcean, PlanetMolten, PlanetFrozen, PlanetContinental}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) Playable() bool {
	switch k {
	case PlanetBarren, PlanetArid, PlanetOcean, PlanetMolten, PlanetFrozen, PlanetContinental:
		return true
	}
	return false
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts a kind name with or without its "Planet" prefix,
// so "Continental" and "PlanetContinental" are the same kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name || n == "Planet"+name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown celestial kind %q", name)
}
