// Package i18n localizes display names of celestial kinds, star types and
// biomes for API responses.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/terrain"
)

// LangParam is the query parameter that overrides Accept-Language.
const LangParam = "lang"

var supported = []language.Tag{language.English, language.SimplifiedChinese}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[string]string{
	language.English: {
		"kind.SpaceEmptiness":         "Space Emptiness",
		"kind.Star":                   "Star",
		"kind.Asteroid":               "Asteroid",
		"kind.PlanetGaia":             "Gaia Planet",
		"kind.PlanetSuperDimensional": "Super Dimensional Planet",
		"kind.GasGiant":               "Gas Giant",
		"kind.GasGiantRinged":         "Ringed Gas Giant",
		"kind.PlanetContinental":      "Continental Planet",
		"kind.PlanetMolten":           "Molten Planet",
		"kind.PlanetBarren":           "Barren Planet",
		"kind.PlanetArid":             "Arid Planet",
		"kind.PlanetFrozen":           "Frozen Planet",
		"kind.PlanetOcean":            "Ocean Planet",

		"star.Blue":   "Blue Star",
		"star.White":  "White Star",
		"star.Yellow": "Yellow Star",
		"star.Orange": "Orange Star",
		"star.Red":    "Red Star",

		"biome.plain":    "Plain",
		"biome.forest":   "Forest",
		"biome.water":    "Water",
		"biome.mountain": "Mountain",
	},
	language.SimplifiedChinese: {
		"kind.SpaceEmptiness":         "虚空",
		"kind.Star":                   "恒星",
		"kind.Asteroid":               "小行星",
		"kind.PlanetGaia":             "盖亚行星",
		"kind.PlanetSuperDimensional": "超维星球",
		"kind.GasGiant":               "气态巨行星",
		"kind.GasGiantRinged":         "环状气态巨行星",
		"kind.PlanetContinental":      "类地行星",
		"kind.PlanetMolten":           "熔岩行星",
		"kind.PlanetBarren":           "荒芜行星",
		"kind.PlanetArid":             "干旱行星",
		"kind.PlanetFrozen":           "冰冻星球",
		"kind.PlanetOcean":            "海洋行星",

		"star.Blue":   "蓝色恒星",
		"star.White":  "白色恒星",
		"star.Yellow": "黄色恒星",
		"star.Orange": "橙色恒星",
		"star.Red":    "红色恒星",

		"biome.plain":    "平原",
		"biome.forest":   "森林",
		"biome.water":    "水域",
		"biome.mountain": "山地",
	},
}

var builder = newBuilder()

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Supported returns the languages names are available in.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match picks the best supported language for an Accept-Language value.
func Match(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// FromRequest resolves the language from the lang query parameter, falling
// back to Accept-Language.
func FromRequest(r *http.Request) language.Tag {
	if lang := strings.TrimSpace(r.URL.Query().Get(LangParam)); lang != "" {
		return Match(lang)
	}
	return Match(r.Header.Get("Accept-Language"))
}

// Names translates display names into one language.
type Names struct {
	tag     language.Tag
	printer *message.Printer
}

func For(tag language.Tag) *Names {
	return &Names{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

func (n *Names) Tag() language.Tag {
	return n.tag
}

func (n *Names) Kind(k celestial.Kind) string {
	return n.printer.Sprintf("kind." + k.String())
}

func (n *Names) StarType(t system.StarType) string {
	return n.printer.Sprintf("star." + t.String())
}

func (n *Names) Biome(b terrain.Biome) string {
	return n.printer.Sprintf("biome." + b.String())
}
