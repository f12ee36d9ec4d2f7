package preview

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/raster"
	"planetinfo-server/internal/terrain"
)

const placeholderPx = 8

var biomeColors = map[terrain.Biome]color.NRGBA{
	terrain.Plain:    {R: 110, G: 168, B: 72, A: 0xff},
	terrain.Forest:   {R: 38, G: 104, B: 44, A: 0xff},
	terrain.Water:    {R: 44, G: 92, B: 178, A: 0xff},
	terrain.Mountain: {R: 136, G: 116, B: 96, A: 0xff},
}

var kindTints = map[celestial.Kind]color.NRGBA{
	celestial.PlanetContinental: {},
	celestial.PlanetOcean:       {B: 30},
	celestial.PlanetMolten:      {R: 90},
	celestial.PlanetFrozen:      {R: 70, G: 70, B: 70},
	celestial.PlanetArid:        {R: 60, G: 40},
	celestial.PlanetBarren:      {R: 30, G: 10},
}

func addClamped(a, b uint8) uint8 {
	if int(a)+int(b) > 0xff {
		return 0xff
	}
	return a + b
}

func shade(v uint8) uint8 {
	return uint8(int(v) * 7 / 8)
}

// PlaceholderTexture draws a two-tone checker for kind and biome, used when
// the game's own textures are not available.
func PlaceholderTexture(kind celestial.Kind, biome terrain.Biome) *image.NRGBA {
	base := biomeColors[biome]
	tint := kindTints[kind]
	light := color.NRGBA{
		R: addClamped(base.R, tint.R),
		G: addClamped(base.G, tint.G),
		B: addClamped(base.B, tint.B),
		A: 0xff,
	}
	dark := color.NRGBA{R: shade(light.R), G: shade(light.G), B: shade(light.B), A: 0xff}

	img := image.NewNRGBA(image.Rect(0, 0, placeholderPx, placeholderPx))
	for y := 0; y < placeholderPx; y++ {
		for x := 0; x < placeholderPx; x++ {
			if (x/2+y/2)%2 == 0 {
				img.SetNRGBA(x, y, light)
			} else {
				img.SetNRGBA(x, y, dark)
			}
		}
	}
	return img
}

// WritePlaceholders writes a placeholder texture for every playable kind and
// biome into dir and returns how many files were written.
func WritePlaceholders(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create texture dir: %w", err)
	}

	written := 0
	for _, kind := range celestial.PlayableKinds {
		for _, biome := range terrain.Biomes {
			path := filepath.Join(dir, AssetName(kind, biome))
			if err := writePNG(path, PlaceholderTexture(kind, biome)); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func writePNG(path string, img *image.NRGBA) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return raster.Encode(f, img)
}
