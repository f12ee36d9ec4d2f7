package i18n

import (
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/terrain"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, language.SimplifiedChinese, Match("zh-CN,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, language.SimplifiedChinese, Match("zh"))
	assert.Equal(t, language.English, Match("en-GB"))
	assert.Equal(t, language.English, Match("fr"))
	assert.Equal(t, language.English, Match(""))
}

func TestFromRequest_QueryOverridesHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/planets?lang=zh", nil)
	r.Header.Set("Accept-Language", "en")
	assert.Equal(t, language.SimplifiedChinese, FromRequest(r))

	r = httptest.NewRequest("GET", "/api/planets", nil)
	r.Header.Set("Accept-Language", "zh-Hans")
	assert.Equal(t, language.SimplifiedChinese, FromRequest(r))
}

func TestNames_Chinese(t *testing.T) {
	zh := For(language.SimplifiedChinese)

	assert.Equal(t, "荒芜行星", zh.Kind(celestial.PlanetBarren))
	assert.Equal(t, "类地行星", zh.Kind(celestial.PlanetContinental))
	assert.Equal(t, "环状气态巨行星", zh.Kind(celestial.GasGiantRinged))
	assert.Equal(t, "红色恒星", zh.StarType(system.Red))
	assert.Equal(t, "水域", zh.Biome(terrain.Water))
}

func TestNames_English(t *testing.T) {
	en := For(language.English)

	assert.Equal(t, "Ocean Planet", en.Kind(celestial.PlanetOcean))
	assert.Equal(t, "Blue Star", en.StarType(system.Blue))
	assert.Equal(t, "Mountain", en.Biome(terrain.Mountain))
}

func TestCatalogsCoverEveryName(t *testing.T) {
	for _, tag := range supported {
		msgs := messages[tag]
		for k := celestial.SpaceEmptiness; k <= celestial.PlanetOcean; k++ {
			assert.Contains(t, msgs, "kind."+k.String(), tag.String())
		}
		for _, st := range system.StarTypes {
			assert.Contains(t, msgs, "star."+st.String(), tag.String())
		}
		for _, b := range terrain.Biomes {
			assert.Contains(t, msgs, "biome."+b.String(), tag.String())
		}
	}
}
