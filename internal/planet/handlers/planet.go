package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/preview"
	"planetinfo-server/internal/shared/errors"
	"planetinfo-server/internal/shared/i18n"
	"planetinfo-server/internal/shared/request"
	"planetinfo-server/internal/shared/response"
	"planetinfo-server/internal/terrain"
)

// maxTilePx bounds the per-cell size a client may request for previews.
const maxTilePx = 64

// previewMaxAge is long because previews are a pure function of the key.
const previewMaxAge = 24 * 60 * 60

type PlanetView struct {
	planet.Record
	KindName     string `json:"kind_name"`
	StarTypeName string `json:"star_type_name"`
}

type TerrainView struct {
	MapKey string `json:"map_key"`
	Size   int    `json:"size"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	terrain.Sample
	BiomeName string `json:"biome_name"`
}

type PlanetHandler struct {
	service    *planet.Service
	compositor *preview.Compositor
	maxPixels  int
}

func NewPlanetHandler(service *planet.Service, compositor *preview.Compositor, maxPixels int) *PlanetHandler {
	return &PlanetHandler{service: service, compositor: compositor, maxPixels: maxPixels}
}

func view(rec *planet.Record, names *i18n.Names) PlanetView {
	return PlanetView{
		Record:       *rec,
		KindName:     names.Kind(rec.Kind),
		StarTypeName: names.StarType(rec.StarType),
	}
}

func (h *PlanetHandler) resolve(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*planet.Record, bool) {
	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return nil, false
	}

	key, err := request.RequireKey(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return nil, false
	}

	rec, err := h.service.Get(r.Context(), key)
	if err != nil {
		response.Error(w, r, logger, err)
		return nil, false
	}
	return rec, true
}

func (h *PlanetHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet")

	rec, ok := h.resolve(w, r, logger)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, view(rec, i18n.For(i18n.FromRequest(r))))
}

func (h *PlanetHandler) ListInSystem(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_planets_in_system")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	galaxyPos, err := request.PathCoord(r, "gx", "gy")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	systemPos, err := request.PathCoord(r, "sx", "sy")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	planets, err := h.service.ListInSystem(r.Context(), galaxyPos, systemPos)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	names := i18n.For(i18n.FromRequest(r))
	out := make([]PlanetView, len(planets))
	for i := range planets {
		out[i] = view(&planets[i], names)
	}
	response.Success(w, http.StatusOK, out)
}

// Terrain samples the planet surface at one cell. The surface is
// PlanetSize cells on a side.
func (h *PlanetHandler) Terrain(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet_terrain")

	rec, ok := h.resolve(w, r, logger)
	if !ok {
		return
	}

	x, hasX, err := request.QueryInt(r, "x")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	y, hasY, err := request.QueryInt(r, "y")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if !hasX || !hasY {
		response.Error(w, r, logger, errors.Validation("x and y are required"))
		return
	}
	if x < 0 || y < 0 || x >= rec.PlanetSize || y >= rec.PlanetSize {
		response.Error(w, r, logger, errors.Validationf("cell (%d,%d) outside %dx%d surface", x, y, rec.PlanetSize, rec.PlanetSize))
		return
	}

	field, err := terrain.New(rec.MapKey, rec.PlanetSize)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to build terrain", err))
		return
	}

	sample := field.Sample(x, y)
	response.Success(w, http.StatusOK, TerrainView{
		MapKey:    rec.MapKey,
		Size:      rec.PlanetSize,
		X:         x,
		Y:         y,
		Sample:    sample,
		BiomeName: i18n.For(i18n.FromRequest(r)).Biome(sample.Biome),
	})
}

// Preview renders the planet surface as a PNG, tile pixels per cell.
func (h *PlanetHandler) Preview(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet_preview")

	rec, ok := h.resolve(w, r, logger)
	if !ok {
		return
	}

	tile, err := request.QueryIntDefault(r, "tile", h.compositor.TilePx())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if tile < 1 || tile > maxTilePx {
		response.Error(w, r, logger, errors.Validationf("tile must be between 1 and %d", maxTilePx))
		return
	}
	if rec.PlanetSize*tile > h.maxPixels {
		response.Error(w, r, logger, errors.Validationf("preview of %d px exceeds limit of %d px", rec.PlanetSize*tile, h.maxPixels))
		return
	}

	var buf bytes.Buffer
	if err := h.compositor.WithTilePx(tile).Export(r.Context(), &buf, rec, rec.PlanetSize); err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to render preview", err))
		return
	}

	response.PNG(w, buf.Bytes(), previewMaxAge)
}
