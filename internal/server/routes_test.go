package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planetinfo-server/internal/auth"
	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/preview"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/universe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoutes(t *testing.T, signer *auth.Signer) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	textures := preview.NewTextureSet(nil, logger)

	return NewRoutes(Deps{
		GalaxyService:   galaxy.NewService(logger),
		SystemService:   system.NewService(logger),
		PlanetService:   planet.NewService(planet.NewMemoryCache(10), logger),
		UniverseService: universe.NewService(universe.NewIndexer(universe.Options{}, logger), nil, logger),
		Compositor:      preview.NewCompositor(textures, 2, logger),
		MaxPreviewPx:    1024,
		Signer:          signer,
	}, logger).Setup()
}

func TestRoutes_Public(t *testing.T) {
	mux := newTestRoutes(t, nil)

	for path, status := range map[string]int{
		"/api/server/health":                      http.StatusOK,
		"/api/galaxies":                           http.StatusOK,
		"/api/galaxies/1/4":                       http.StatusOK,
		"/api/galaxies/1/4/systems":               http.StatusOK,
		"/api/galaxies/1/4/systems/14/93":         http.StatusOK,
		"/api/galaxies/1/4/systems/14/93/planets": http.StatusOK,
		"/api/index/status":                       http.StatusOK,
		"/api/index/planets":                      http.StatusServiceUnavailable,
		"/api/unknown":                            http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, rec.Code, path)
	}
}

func TestRoutes_RebuildRequiresAdmin(t *testing.T) {
	signer, err := auth.NewSigner("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newTestRoutes(t, signer).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/index/rebuild", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	newTestRoutes(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/index/rebuild", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
