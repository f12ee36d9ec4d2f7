package handlers

import (
	"log/slog"
	"net/http"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
	"planetinfo-server/internal/shared/i18n"
	"planetinfo-server/internal/shared/request"
	"planetinfo-server/internal/shared/response"
	"planetinfo-server/internal/system"
)

type SystemSummary struct {
	system.StarSystem
	StarTypeName string `json:"star_type_name"`
}

type BodyView struct {
	Pos      mapkey.Coord   `json:"pos"`
	Kind     celestial.Kind `json:"kind"`
	Name     string         `json:"name"`
	Playable bool           `json:"playable"`
	// MapKey is set for playable planets only.
	MapKey string `json:"map_key,omitempty"`
}

type SystemDetail struct {
	SystemSummary
	Bodies []BodyView `json:"bodies"`
}

type SystemHandler struct {
	service *system.Service
}

func NewSystemHandler(service *system.Service) *SystemHandler {
	return &SystemHandler{service: service}
}

func (h *SystemHandler) ListInGalaxy(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_star_systems")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	galaxyPos, err := request.PathCoord(r, "gx", "gy")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	systems, err := h.service.ListInGalaxy(galaxyPos)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	names := i18n.For(i18n.FromRequest(r))
	out := make([]SystemSummary, len(systems))
	for i, s := range systems {
		out[i] = SystemSummary{StarSystem: s, StarTypeName: names.StarType(s.StarType)}
	}
	response.Success(w, http.StatusOK, out)
}

// Get returns the star system geometry with a survey of every occupied tile.
func (h *SystemHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_star_system")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	galaxyPos, err := request.PathCoord(r, "gx", "gy")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	pos, err := request.PathCoord(r, "sx", "sy")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	sys, err := h.service.Get(galaxyPos, pos)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	names := i18n.For(i18n.FromRequest(r))
	bodies := celestial.Survey(sys.MapKey, sys.StarPositions)
	detail := SystemDetail{
		SystemSummary: SystemSummary{StarSystem: *sys, StarTypeName: names.StarType(sys.StarType)},
		Bodies:        make([]BodyView, len(bodies)),
	}
	for i, b := range bodies {
		view := BodyView{Pos: b.Pos, Kind: b.Kind, Name: names.Kind(b.Kind), Playable: b.Kind.Playable()}
		if view.Playable {
			view.MapKey = mapkey.PlanetKey(sys.GalaxyPos, sys.Pos, b.Pos)
		}
		detail.Bodies[i] = view
	}

	response.Success(w, http.StatusOK, detail)
}
