package handlers

import (
	"log/slog"
	"net/http"

	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/shared/errors"
	"planetinfo-server/internal/shared/request"
	"planetinfo-server/internal/shared/response"
	"planetinfo-server/internal/system"
)

type GalaxyView struct {
	galaxy.Galaxy
	SystemCount int `json:"system_count"`
}

type GalaxyHandler struct {
	service *galaxy.Service
}

func NewGalaxyHandler(service *galaxy.Service) *GalaxyHandler {
	return &GalaxyHandler{service: service}
}

func (h *GalaxyHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_galaxies")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.service.List())
}

func (h *GalaxyHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_galaxy")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	pos, err := request.PathCoord(r, "gx", "gy")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	g, err := h.service.Get(pos)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, GalaxyView{
		Galaxy:      *g,
		SystemCount: len(system.InGalaxy(g.Pos)),
	})
}
