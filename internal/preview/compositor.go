package preview

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	xdraw "golang.org/x/image/draw"

	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/raster"
	"planetinfo-server/internal/terrain"
)

type Compositor struct {
	textures *TextureSet
	tilePx   int
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewCompositor(textures *TextureSet, tilePx int, logger *slog.Logger) *Compositor {
	logger.Debug("Initializing preview compositor", "tile_px", tilePx)

	return &Compositor{
		textures: textures,
		tilePx:   tilePx,
		tracer:   otel.Tracer("planetinfo-server/preview"),
		logger:   logger,
	}
}

func (c *Compositor) TilePx() int {
	return c.tilePx
}

// WithTilePx returns a compositor sharing the texture cache that paints
// each cell as a px square.
func (c *Compositor) WithTilePx(px int) *Compositor {
	clone := *c
	clone.tilePx = px
	return &clone
}

// Compose renders the surface of rec over a size x size lattice. Each cell
// becomes a tilePx square of its biome texture.
func (c *Compositor) Compose(ctx context.Context, rec *planet.Record, size int) (*image.NRGBA, error) {
	ctx, span := c.tracer.Start(ctx, "preview.compose", trace.WithAttributes(
		attribute.String("map_key", rec.MapKey),
		attribute.Int("size", size),
		attribute.Int("tile_px", c.tilePx),
	))
	defer span.End()

	img, err := c.compose(ctx, rec, size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return img, nil
}

func (c *Compositor) compose(ctx context.Context, rec *planet.Record, size int) (*image.NRGBA, error) {
	logger := c.logger.With(
		"component", "preview_compositor",
		"operation", "compose",
		"map_key", rec.MapKey,
		"size", size,
	)

	field, err := terrain.New(rec.MapKey, size)
	if err != nil {
		return nil, err
	}
	grid := field.Grid()

	tiles := make(map[terrain.Biome]*image.NRGBA, len(terrain.Biomes))
	for _, row := range grid {
		for _, b := range row {
			if _, ok := tiles[b]; ok {
				continue
			}
			tile, err := c.textures.Tile(rec.Kind, b, c.tilePx)
			if err != nil {
				return nil, err
			}
			tiles[b] = tile
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, size*c.tilePx, size*c.tilePx))
	for y, row := range grid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x, b := range row {
			block := image.Rect(x*c.tilePx, y*c.tilePx, (x+1)*c.tilePx, (y+1)*c.tilePx)
			xdraw.Draw(canvas, block, tiles[b], image.Point{}, xdraw.Over)
		}
	}

	logger.Debug("Preview composed", "biomes", len(tiles), "pixels", canvas.Bounds().Dx())
	return canvas, nil
}

// Export composes the preview and writes it to w as PNG.
func (c *Compositor) Export(ctx context.Context, w io.Writer, rec *planet.Record, size int) error {
	img, err := c.Compose(ctx, rec, size)
	if err != nil {
		return err
	}
	if err := raster.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode preview of %s: %w", rec.MapKey, err)
	}
	return nil
}
