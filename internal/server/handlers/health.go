package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"planetinfo-server/internal/shared/response"
	"planetinfo-server/internal/universe"
)

// Pinger is satisfied by the database handle; nil means not configured.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Database  string         `json:"database"`
	Index     universe.State `json:"index"`
}

type HealthHandler struct {
	db    Pinger
	index *universe.Service
}

func NewHealthHandler(db Pinger, index *universe.Service) *HealthHandler {
	return &HealthHandler{db: db, index: index}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	dbStatus := "disabled"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err == nil {
			dbStatus = "connected"
		} else {
			dbStatus = "disconnected"
			logger.Warn("Database ping failed", "error", err)
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  dbStatus,
		Index:     h.index.Status().State,
	}

	response.Success(w, http.StatusOK, resp)
}
