// Package preview composes a planet surface image from per-biome textures.
package preview

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"sync"

	xdraw "golang.org/x/image/draw"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/raster"
	"planetinfo-server/internal/terrain"
)

var ErrMissingTexture = errors.New("missing texture")

// AssetName is the file name of the texture for kind and biome,
// e.g. "PlanetContinental_Grass.png".
func AssetName(kind celestial.Kind, biome terrain.Biome) string {
	return fmt.Sprintf("%s_%s.png", kind, biome.Asset())
}

type tileKey struct {
	name string
	px   int
}

// TextureSet decodes each source texture once and keeps one resampled
// copy per tile size.
type TextureSet struct {
	fsys    fs.FS
	mu      sync.Mutex
	sources map[string]*image.NRGBA
	tiles   map[tileKey]*image.NRGBA
	logger  *slog.Logger
}

func NewTextureSet(fsys fs.FS, logger *slog.Logger) *TextureSet {
	return &TextureSet{
		fsys:    fsys,
		sources: make(map[string]*image.NRGBA),
		tiles:   make(map[tileKey]*image.NRGBA),
		logger:  logger,
	}
}

// Source returns the decoded source texture for kind and biome.
func (t *TextureSet) Source(kind celestial.Kind, biome terrain.Biome) (*image.NRGBA, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source(AssetName(kind, biome))
}

func (t *TextureSet) source(name string) (*image.NRGBA, error) {
	if img, ok := t.sources[name]; ok {
		return img, nil
	}

	f, err := t.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTexture, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", name, err)
	}
	defer f.Close()

	img, err := raster.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", name, err)
	}

	t.logger.Debug("Texture loaded", "component", "texture_set", "name", name, "bounds", img.Bounds().String())
	t.sources[name] = img
	return img, nil
}

// Tile returns the texture for kind and biome resampled to px x px with
// nearest-neighbor sampling.
func (t *TextureSet) Tile(kind celestial.Kind, biome terrain.Biome, px int) (*image.NRGBA, error) {
	if px <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", px)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	name := AssetName(kind, biome)
	key := tileKey{name: name, px: px}
	if tile, ok := t.tiles[key]; ok {
		return tile, nil
	}

	src, err := t.source(name)
	if err != nil {
		return nil, err
	}

	tile := image.NewNRGBA(image.Rect(0, 0, px, px))
	xdraw.NearestNeighbor.Scale(tile, tile.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	t.tiles[key] = tile
	return tile, nil
}
