package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/handlers"
	"github.com/Dosada05/judo-pools/metrics"
)

func newTestRouter() *chi.Mux {
	router := chi.NewRouter()
	hub := brackets.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	SetupRoutes(router, Handlers{
		Category:  handlers.NewCategoryHandler(nil),
		Pool:      handlers.NewPoolHandler(nil, nil),
		Table:     handlers.NewTableHandler(nil),
		Report:    handlers.NewReportHandler(nil, nil),
		WebSocket: handlers.NewWebSocketHandler(hub, []string{"*"}),
		Metrics:   metrics.New().Handler(),
	}, []string{"https://judo.example.test"})
	return router
}

func TestInfrastructureRoutes(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Paths map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/categories/{categoryID}/pools/{poolNumber}/fixtures")
	assert.Contains(t, doc.Paths, "/competitors/{competitorID}")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "judo_roster_commits_total")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/tables/balance", nil)
	req.Header.Set("Origin", "https://judo.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://judo.example.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoomIsRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/somewhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
