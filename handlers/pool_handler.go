package handlers

import (
	"net/http"

	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/services"
)

type PoolHandler struct {
	poolService services.PoolService
	boutService services.BoutService
}

func NewPoolHandler(ps services.PoolService, bs services.BoutService) *PoolHandler {
	return &PoolHandler{poolService: ps, boutService: bs}
}

func poolKeyFromURL(r *http.Request) (models.PoolKey, error) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		return models.PoolKey{}, err
	}
	poolNumber, err := getIDFromURL(r, "poolNumber")
	if err != nil {
		return models.PoolKey{}, err
	}
	return models.PoolKey{CategoryID: categoryID, PoolNumber: poolNumber}, nil
}

// ListHandler handles GET /categories/{categoryID}/pools
func (h *PoolHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pools, err := h.poolService.Pools(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pools": pools}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler handles GET /categories/{categoryID}/pools/{poolNumber}
func (h *PoolHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	key, err := poolKeyFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pool, err := h.poolService.Pool(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pool": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveFixtureHandler handles PUT /categories/{categoryID}/pools/{poolNumber}/fixtures.
// A 0-0 submission clears the bout.
func (h *PoolHandler) SaveFixtureHandler(w http.ResponseWriter, r *http.Request) {
	key, err := poolKeyFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.SaveFixtureInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.boutService.SaveFixture(r.Context(), key, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"action": result.Action, "pool": result.Pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ValidationHandler handles PUT /categories/{categoryID}/pools/{poolNumber}/validation
func (h *PoolHandler) ValidationHandler(w http.ResponseWriter, r *http.Request) {
	key, err := poolKeyFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.ValidatePoolInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.poolService.ValidatePool(r.Context(), key, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pool": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
