package handlers

import (
	"net/http"

	"github.com/Dosada05/judo-pools/roster"
	"github.com/Dosada05/judo-pools/services"
)

type CategoryHandler struct {
	poolService services.PoolService
}

func NewCategoryHandler(ps services.PoolService) *CategoryHandler {
	return &CategoryHandler{poolService: ps}
}

type updateRosterRequest struct {
	Operations []roster.Operation `json:"operations"`
}

type outsideBracketRequest struct {
	OutsideBracket bool `json:"hors_categorie"`
}

// ListHandler handles GET /categories
func (h *CategoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.poolService.ListCategories(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterCompetitorHandler handles POST /categories/{categoryID}/competitors
func (h *CategoryHandler) RegisterCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.RegisterCompetitorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.poolService.RegisterCompetitor(r.Context(), categoryID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateCompetitorHandler handles PUT /competitors/{competitorID}
func (h *CategoryHandler) UpdateCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateCompetitorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.poolService.UpdateCompetitor(r.Context(), competitorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteCompetitorHandler handles DELETE /competitors/{competitorID}
func (h *CategoryHandler) DeleteCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.poolService.DeleteCompetitor(r.Context(), competitorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RosterHandler handles GET /categories/{categoryID}/roster
func (h *CategoryHandler) RosterHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.poolService.Roster(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateRosterHandler handles POST /categories/{categoryID}/roster. The operations are
// applied and committed as one batch.
func (h *CategoryHandler) UpdateRosterHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updateRosterRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.poolService.UpdateRoster(r.Context(), categoryID, input.Operations)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GeneratePoolsHandler handles POST /categories/{categoryID}/pools/generate
func (h *CategoryHandler) GeneratePoolsHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.poolService.GeneratePools(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OutsideBracketHandler handles PUT /competitors/{competitorID}/outside-bracket
func (h *CategoryHandler) OutsideBracketHandler(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input outsideBracketRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.poolService.SetOutsideBracket(r.Context(), competitorID, input.OutsideBracket)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
