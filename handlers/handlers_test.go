package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/roster"
	"github.com/Dosada05/judo-pools/services"
	"github.com/Dosada05/judo-pools/snapshot"
)

// stubPoolService overrides the methods a test needs; the others panic.
type stubPoolService struct {
	services.PoolService
	updateRoster     func(categoryID int, ops []roster.Operation) (*services.RosterView, error)
	pool             func(key models.PoolKey) (*snapshot.PoolView, error)
	updateCompetitor func(id int, input services.UpdateCompetitorInput) (*models.Competitor, error)
	deleteCompetitor func(id int) error
}

func (s *stubPoolService) UpdateCompetitor(ctx context.Context, id int, input services.UpdateCompetitorInput) (*models.Competitor, error) {
	return s.updateCompetitor(id, input)
}

func (s *stubPoolService) DeleteCompetitor(ctx context.Context, id int) error {
	return s.deleteCompetitor(id)
}

func (s *stubPoolService) UpdateRoster(ctx context.Context, categoryID int, ops []roster.Operation) (*services.RosterView, error) {
	return s.updateRoster(categoryID, ops)
}

func (s *stubPoolService) Pool(ctx context.Context, key models.PoolKey) (*snapshot.PoolView, error) {
	return s.pool(key)
}

type stubBoutService struct {
	save func(key models.PoolKey, input services.SaveFixtureInput) (*services.PoolResult, error)
}

func (s *stubBoutService) SaveFixture(ctx context.Context, key models.PoolKey, input services.SaveFixtureInput) (*services.PoolResult, error) {
	return s.save(key, input)
}

type stubExportService struct {
	sheet *services.ScoreSheet
}

func (s *stubExportService) ScoreSheet(ctx context.Context, categoryID int) (*services.ScoreSheet, error) {
	if s.sheet == nil {
		return nil, fmt.Errorf("%w: %d", services.ErrCategoryNotFound, categoryID)
	}
	return s.sheet, nil
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: 3", services.ErrCategoryNotFound), http.StatusNotFound},
		{services.ErrPoolNotFound, http.StatusNotFound},
		{services.ErrTableNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: %w", services.ErrConflict, errors.New("bout vanished")), http.StatusConflict},
		{services.ErrPoolValidated, http.StatusConflict},
		{services.ErrPoolsLocked, http.StatusConflict},
		{fmt.Errorf("%w: %w", services.ErrValidationFailed, roster.ErrLocked), http.StatusUnprocessableEntity},
		{services.ErrPoolNotFinished, http.StatusUnprocessableEntity},
		{services.ErrNotPaired, http.StatusUnprocessableEntity},
		{services.ErrInvalidLink, http.StatusUnauthorized},
		{errors.New("database is down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func poolRouter(ps services.PoolService, bs services.BoutService) http.Handler {
	h := NewPoolHandler(ps, bs)
	c := NewCategoryHandler(ps)
	r := chi.NewRouter()
	r.Post("/categories/{categoryID}/roster", c.UpdateRosterHandler)
	r.Put("/competitors/{competitorID}", c.UpdateCompetitorHandler)
	r.Delete("/competitors/{competitorID}", c.DeleteCompetitorHandler)
	r.Get("/categories/{categoryID}/pools/{poolNumber}", h.GetHandler)
	r.Put("/categories/{categoryID}/pools/{poolNumber}/fixtures", h.SaveFixtureHandler)
	return r
}

func TestGetPoolHandler(t *testing.T) {
	ps := &stubPoolService{pool: func(key models.PoolKey) (*snapshot.PoolView, error) {
		if key.PoolNumber != 2 {
			return nil, services.ErrPoolNotFound
		}
		return &snapshot.PoolView{Key: key, Category: "Minimes"}, nil
	}}
	router := poolRouter(ps, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories/4/pools/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Pool snapshot.PoolView `json:"pool"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.PoolKey{CategoryID: 4, PoolNumber: 2}, body.Pool.Key)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories/4/pools/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories/x/pools/3", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveFixtureHandler(t *testing.T) {
	var got services.SaveFixtureInput
	bs := &stubBoutService{save: func(key models.PoolKey, input services.SaveFixtureInput) (*services.PoolResult, error) {
		got = input
		if input.Fighter2ID == 99 {
			return nil, fmt.Errorf("%w: 1 and 99", services.ErrNotPaired)
		}
		return &services.PoolResult{Action: "save", Pool: &snapshot.PoolView{Key: key}}, nil
	}}
	router := poolRouter(nil, bs)

	body := `{"fighter1_id": 1, "fighter2_id": 2, "score1": 1, "score2": 1, "winner": "draw"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/categories/1/pools/1/fixtures", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "draw", string(got.Winner))
	assert.Contains(t, rec.Body.String(), `"action": "save"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/categories/1/pools/1/fixtures", strings.NewReader(`{"fighter1_id": 1, "fighter2_id": 99, "score1": 1}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/categories/1/pools/1/fixtures", strings.NewReader(`{"fighter": 1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown key")
}

func TestUpdateRosterHandler(t *testing.T) {
	ps := &stubPoolService{updateRoster: func(categoryID int, ops []roster.Operation) (*services.RosterView, error) {
		if len(ops) == 0 {
			return nil, fmt.Errorf("%w: %w", services.ErrConflict, errors.New("stale"))
		}
		return &services.RosterView{CategoryID: categoryID, Pools: 2}, nil
	}}
	router := poolRouter(ps, nil)

	body := `{"operations": [{"op": "separator", "node": "tmp-1"}, {"op": "move", "node": "c-4", "before": "tmp-1"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/categories/5/roster", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category_id": 5`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/categories/5/roster", strings.NewReader(`{"operations": []}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateCompetitorHandler(t *testing.T) {
	ps := &stubPoolService{updateCompetitor: func(id int, input services.UpdateCompetitorInput) (*models.Competitor, error) {
		if input.Weight != nil {
			return nil, fmt.Errorf("%w: %w", services.ErrValidationFailed, roster.ErrLocked)
		}
		return &models.Competitor{ID: id, LastName: *input.LastName}, nil
	}}
	router := poolRouter(ps, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/competitors/7", strings.NewReader(`{"lastname": "Bernard"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lastname": "Bernard"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/competitors/7", strings.NewReader(`{"weight": 41.5}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteCompetitorHandler(t *testing.T) {
	ps := &stubPoolService{deleteCompetitor: func(id int) error {
		if id == 8 {
			return services.ErrPoolValidated
		}
		return nil
	}}
	router := poolRouter(ps, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/competitors/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/competitors/8", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportHandler(t *testing.T) {
	h := NewReportHandler(nil, &stubExportService{sheet: &services.ScoreSheet{
		Filename: "Feuille_Minimes.xlsx",
		Data:     []byte("xlsx"),
		URL:      "https://files.example.test/exports/category-1/score-sheet.xlsx",
	}})
	r := chi.NewRouter()
	r.Get("/categories/{categoryID}/export", h.ExportHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories/1/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xlsx", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Feuille_Minimes.xlsx")
	assert.Equal(t, "https://files.example.test/exports/category-1/score-sheet.xlsx", rec.Header().Get("X-Archive-URL"))

	h = NewReportHandler(nil, &stubExportService{})
	r = chi.NewRouter()
	r.Get("/categories/{categoryID}/export", h.ExportHandler)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories/1/export", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidRoom(t *testing.T) {
	for room, want := range map[string]bool{
		"board":       true,
		"table_3":     true,
		"category_12": true,
		"table_0":     false,
		"table_x":     false,
		"tournament":  false,
		"":            false,
	} {
		assert.Equal(t, want, validRoom(room), room)
	}
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/board", nil)
	check := originChecker([]string{"https://judo.example.test"})
	assert.True(t, check(req), "same-origin tools send no Origin")

	req.Header.Set("Origin", "https://judo.example.test")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.test")
	assert.False(t, check(req))
	assert.True(t, originChecker([]string{"*"})(req))
}
