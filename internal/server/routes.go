package server

import (
	"log/slog"
	"net/http"

	"planetinfo-server/internal/auth"
	"planetinfo-server/internal/galaxy"
	galaxyHandlers "planetinfo-server/internal/galaxy/handlers"
	"planetinfo-server/internal/middleware"
	"planetinfo-server/internal/planet"
	planetHandlers "planetinfo-server/internal/planet/handlers"
	"planetinfo-server/internal/preview"
	serverHandlers "planetinfo-server/internal/server/handlers"
	"planetinfo-server/internal/shared/database"
	"planetinfo-server/internal/system"
	systemHandlers "planetinfo-server/internal/system/handlers"
	"planetinfo-server/internal/universe"
	universeHandlers "planetinfo-server/internal/universe/handlers"
)

type Routes struct {
	db              *database.DB
	galaxyService   *galaxy.Service
	systemService   *system.Service
	planetService   *planet.Service
	universeService *universe.Service
	compositor      *preview.Compositor
	maxPreviewPx    int
	signer          *auth.Signer
	logger          *slog.Logger
}

type Deps struct {
	DB              *database.DB
	GalaxyService   *galaxy.Service
	SystemService   *system.Service
	PlanetService   *planet.Service
	UniverseService *universe.Service
	Compositor      *preview.Compositor
	MaxPreviewPx    int
	// Signer is nil when admin access is not configured.
	Signer *auth.Signer
}

func NewRoutes(deps Deps, logger *slog.Logger) *Routes {
	return &Routes{
		db:              deps.DB,
		galaxyService:   deps.GalaxyService,
		systemService:   deps.SystemService,
		planetService:   deps.PlanetService,
		universeService: deps.UniverseService,
		compositor:      deps.Compositor,
		maxPreviewPx:    deps.MaxPreviewPx,
		signer:          deps.Signer,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	var pinger serverHandlers.Pinger
	if r.db != nil {
		pinger = r.db
	}
	healthHandler := serverHandlers.NewHealthHandler(pinger, r.universeService)
	galaxyHandler := galaxyHandlers.NewGalaxyHandler(r.galaxyService)
	systemHandler := systemHandlers.NewSystemHandler(r.systemService)
	planetHandler := planetHandlers.NewPlanetHandler(r.planetService, r.compositor, r.maxPreviewPx)
	indexHandler := universeHandlers.NewIndexHandler(r.universeService)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/galaxies", galaxyHandler.List)
	mux.HandleFunc("/api/galaxies/{gx}/{gy}", galaxyHandler.Get)
	mux.HandleFunc("/api/galaxies/{gx}/{gy}/systems", systemHandler.ListInGalaxy)
	mux.HandleFunc("/api/galaxies/{gx}/{gy}/systems/{sx}/{sy}", systemHandler.Get)
	mux.HandleFunc("/api/galaxies/{gx}/{gy}/systems/{sx}/{sy}/planets", planetHandler.ListInSystem)
	mux.HandleFunc("/api/planets", planetHandler.GetByKey)
	mux.HandleFunc("/api/planets/terrain", planetHandler.Terrain)
	mux.HandleFunc("/api/planets/preview", planetHandler.Preview)
	mux.HandleFunc("/api/index/status", indexHandler.Status)
	mux.HandleFunc("/api/index/planets", indexHandler.QueryPlanets)

	// Admin-only endpoints (admin token)
	mux.Handle("/api/index/rebuild", middleware.RequireAdmin(r.signer, http.HandlerFunc(indexHandler.Rebuild)))

	logger.Info("Routes configured successfully",
		"admin_enabled", r.signer != nil,
		"admin_endpoints", []string{"/api/index/rebuild"},
	)

	return mux
}
