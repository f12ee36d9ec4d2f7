package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"planetinfo-server/internal/celestial"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/universe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMux(idx *universe.Index) *http.ServeMux {
	ix := universe.NewIndexer(universe.Options{Workers: 4}, discardLogger())
	if idx != nil {
		ix.Publish(idx)
	}
	h := NewIndexHandler(universe.NewService(ix, nil, discardLogger()))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/index/status", h.Status)
	mux.HandleFunc("/api/index/planets", h.QueryPlanets)
	mux.HandleFunc("/api/index/rebuild", h.Rebuild)
	return mux
}

func fixture() *universe.Index {
	return &universe.Index{Planets: []planet.Record{
		{MapKey: "a", Kind: celestial.PlanetOcean, StarType: system.Red, PlanetSize: 120, MineralDensity: 4},
		{MapKey: "b", Kind: celestial.PlanetMolten, StarType: system.Blue, PlanetSize: 200, MineralDensity: 9},
		{MapKey: "c", Kind: celestial.PlanetOcean, StarType: system.Blue, PlanetSize: 60, MineralDensity: 1},
	}}
}

func serve(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestQueryPlanets(t *testing.T) {
	rec := serve(newMux(fixture()), http.MethodGet, "/api/index/planets?kind=Ocean&sort=planet_size&desc=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var page universe.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0].MapKey)
	assert.Equal(t, "c", page.Items[1].MapKey)
}

func TestQueryPlanets_Filters(t *testing.T) {
	rec := serve(newMux(fixture()), http.MethodGet, "/api/index/planets?star=Blue&min_mineral=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var page universe.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].MapKey)
}

func TestQueryPlanets_BadParams(t *testing.T) {
	mux := newMux(fixture())
	for _, q := range []string{
		"kind=Lava",
		"kind=Asteroid",
		"star=Green",
		"min_size=big",
		"sort=gravity",
		"desc=maybe",
		"limit=1000",
		"offset=-1",
	} {
		rec := serve(mux, http.MethodGet, "/api/index/planets?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestQueryPlanets_IndexNotReady(t *testing.T) {
	rec := serve(newMux(nil), http.MethodGet, "/api/index/planets")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(newMux(nil), http.MethodGet, "/api/index/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status universe.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, universe.StateEmpty, status.State)
}

func TestRebuild(t *testing.T) {
	mux := newMux(nil)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(mux, http.MethodGet, "/api/index/rebuild").Code)

	if testing.Short() {
		t.Skip("full universe scan")
	}
	rec := serve(mux, http.MethodPost, "/api/index/rebuild")
	require.Equal(t, http.StatusOK, rec.Code)

	var status universe.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, universe.StateReady, status.State)
	assert.Equal(t, 76265, status.Counts.Planets)
}
