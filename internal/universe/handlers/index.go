package handlers

import (
	"log/slog"
	"net/http"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/shared/errors"
	"planetinfo-server/internal/shared/request"
	"planetinfo-server/internal/shared/response"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/universe"
)

type IndexHandler struct {
	service *universe.Service
}

func NewIndexHandler(service *universe.Service) *IndexHandler {
	return &IndexHandler{service: service}
}

func (h *IndexHandler) Status(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "index_status")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.service.Status())
}

func optionalInt(r *http.Request, name string) (*int, error) {
	v, ok, err := request.QueryInt(r, name)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func parseQuery(r *http.Request) (universe.Query, error) {
	var (
		q   universe.Query
		err error
	)
	params := r.URL.Query()

	if name := params.Get("kind"); name != "" {
		kind, err := celestial.ParseKind(name)
		if err != nil {
			return q, errors.WrapValidation("invalid kind", err)
		}
		if !kind.Playable() {
			return q, errors.Validationf("%s is not a playable planet kind", kind)
		}
		q.Filter.Kind = &kind
	}
	if name := params.Get("star"); name != "" {
		st, err := system.ParseStarType(name)
		if err != nil {
			return q, errors.WrapValidation("invalid star type", err)
		}
		q.Filter.StarType = &st
	}

	if q.Filter.MinSize, err = optionalInt(r, "min_size"); err != nil {
		return q, err
	}
	if q.Filter.MaxSize, err = optionalInt(r, "max_size"); err != nil {
		return q, err
	}
	if q.Filter.MinMineral, err = optionalInt(r, "min_mineral"); err != nil {
		return q, err
	}
	if q.Filter.MaxMineral, err = optionalInt(r, "max_mineral"); err != nil {
		return q, err
	}

	if q.Sort, err = universe.ParseSortField(params.Get("sort")); err != nil {
		return q, errors.WrapValidation("invalid sort", err)
	}
	if q.Desc, err = request.QueryBool(r, "desc"); err != nil {
		return q, err
	}
	if q.Offset, err = request.QueryIntDefault(r, "offset", 0); err != nil {
		return q, err
	}
	if q.Limit, err = request.QueryIntDefault(r, "limit", universe.DefaultLimit); err != nil {
		return q, err
	}
	return q, nil
}

func (h *IndexHandler) QueryPlanets(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "query_planets")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	page, err := h.service.QueryPlanets(q)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, page)
}

// Rebuild rescans the universe and blocks until the new index is published.
func (h *IndexHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "rebuild_index")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	status, err := h.service.Rebuild(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Universe index rebuilt on request",
		"planets", status.Counts.Planets, "duration_ms", status.DurationMS)
	response.Success(w, http.StatusOK, status)
}
