// Package mapkey builds and parses the canonical string identity of every
// entity in the universe hierarchy, e.g. "Weathering.MapOfPlanet#=1,4=14,93=24,31".
package mapkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedKey is returned for keys with a missing delimiter, an unknown
// level or a coordinate count that does not match the level.
var ErrMalformedKey = errors.New("malformed map key")

const (
	prefix    = "Weathering."
	delimiter = "#"
)

type Level int

const (
	Universe Level = iota
	Galaxy
	StarSystem
	Planet
)

var levelNames = map[Level]string{
	Universe:   "MapOfUniverse",
	Galaxy:     "MapOfGalaxy",
	StarSystem: "MapOfStarSystem",
	Planet:     "MapOfPlanet",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Arity is the number of coordinate pairs a key of this level carries.
func (l Level) Arity() int {
	return int(l)
}

func (l Level) valid() bool {
	_, ok := levelNames[l]
	return ok
}

// Coord is a non-negative grid position at one level of the hierarchy.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Build returns the key for level with the given coordinate pairs.
func Build(level Level, coords ...Coord) (string, error) {
	if !level.valid() {
		return "", fmt.Errorf("%w: unknown level %d", ErrMalformedKey, int(level))
	}
	if len(coords) != level.Arity() {
		return "", fmt.Errorf("%w: %s expects %d coordinate pairs, got %d",
			ErrMalformedKey, level, level.Arity(), len(coords))
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(level.String())
	b.WriteString(delimiter)
	for _, c := range coords {
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(c.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Y))
	}
	return b.String(), nil
}

// MustBuild is Build for call sites whose arity is fixed at compile time.
func MustBuild(level Level, coords ...Coord) string {
	key, err := Build(level, coords...)
	if err != nil {
		panic(err)
	}
	return key
}

func UniverseKey() string {
	return MustBuild(Universe)
}

func GalaxyKey(g Coord) string {
	return MustBuild(Galaxy, g)
}

func StarSystemKey(g, s Coord) string {
	return MustBuild(StarSystem, g, s)
}

func PlanetKey(g, s, p Coord) string {
	return MustBuild(Planet, g, s, p)
}

// Parse splits key into its level and coordinate pairs.
func Parse(key string) (Level, []Coord, error) {
	head, suffix, ok := strings.Cut(key, delimiter)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %q has no %q", ErrMalformedKey, key, delimiter)
	}

	level, ok := levelFromHead(head)
	if !ok {
		return 0, nil, fmt.Errorf("%w: unknown level in %q", ErrMalformedKey, key)
	}

	coords := make([]Coord, 0, level.Arity())
	if suffix != "" {
		if !strings.HasPrefix(suffix, "=") {
			return 0, nil, fmt.Errorf("%w: %q coordinates must start with '='", ErrMalformedKey, key)
		}
		for _, part := range strings.Split(suffix[1:], "=") {
			c, err := parseCoord(part)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: %q: %v", ErrMalformedKey, key, err)
			}
			coords = append(coords, c)
		}
	}

	if len(coords) != level.Arity() {
		return 0, nil, fmt.Errorf("%w: %s expects %d coordinate pairs, got %d in %q",
			ErrMalformedKey, level, level.Arity(), len(coords), key)
	}
	return level, coords, nil
}

// ParseLevel parses key and additionally requires it to be of level want.
func ParseLevel(key string, want Level) ([]Coord, error) {
	level, coords, err := Parse(key)
	if err != nil {
		return nil, err
	}
	if level != want {
		return nil, fmt.Errorf("%w: expected %s key, got %s", ErrMalformedKey, want, level)
	}
	return coords, nil
}

// SelfSuffix returns the part of key from the delimiter onward. It is the
// ancestry-independent seed for "this entity's own index".
func SelfSuffix(key string) string {
	idx := strings.Index(key, delimiter)
	if idx < 0 {
		return key
	}
	return key[idx:]
}

func levelFromHead(head string) (Level, bool) {
	name, ok := strings.CutPrefix(head, prefix)
	if !ok {
		return 0, false
	}
	for level, n := range levelNames {
		if n == name {
			return level, true
		}
	}
	return 0, false
}

func parseCoord(part string) (Coord, error) {
	xs, ys, ok := strings.Cut(part, ",")
	if !ok {
		return Coord{}, fmt.Errorf("pair %q has no ','", part)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Coord{}, fmt.Errorf("bad x in %q", part)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Coord{}, fmt.Errorf("bad y in %q", part)
	}
	if x < 0 || y < 0 {
		return Coord{}, fmt.Errorf("negative coordinate in %q", part)
	}
	// Keys are hashed verbatim, so each position has exactly one spelling.
	if strconv.Itoa(x) != xs || strconv.Itoa(y) != ys {
		return Coord{}, fmt.Errorf("non-canonical number in %q", part)
	}
	return Coord{X: x, Y: y}, nil
}
