package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/judo-pools/services"
)

type TableHandler struct {
	tableService services.TableService
}

func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

type reassignRequest struct {
	Assignments []services.ReassignInput `json:"assignments"`
}

type tableCountRequest struct {
	TableCount int `json:"table_count"`
}

type activeCategoriesRequest struct {
	CategoryIDs []int `json:"category_ids"`
}

// BoardHandler handles GET /tables
func (h *TableHandler) BoardHandler(w http.ResponseWriter, r *http.Request) {
	board, err := h.tableService.Board(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"board": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler handles GET /tables/{tableNumber}
func (h *TableHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	number, err := getIDFromURL(r, "tableNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	table, err := h.tableService.Table(r.Context(), number)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"table": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BalanceHandler handles POST /tables/balance?dry_run=true
func (h *TableHandler) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	dryRun, err := getBoolQuery(r, "dry_run")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.tableService.Balance(r.Context(), dryRun)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"balance": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReassignHandler handles PUT /tables/assignments
func (h *TableHandler) ReassignHandler(w http.ResponseWriter, r *http.Request) {
	var input reassignRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	board, err := h.tableService.Reassign(r.Context(), input.Assignments)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"board": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LinkHandler handles GET /tables/{tableNumber}/link
func (h *TableHandler) LinkHandler(w http.ResponseWriter, r *http.Request) {
	number, err := getIDFromURL(r, "tableNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	link, err := h.tableService.TableLink(r.Context(), number)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"link": link}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveLinkHandler handles GET /t/{token}
func (h *TableHandler) ResolveLinkHandler(w http.ResponseWriter, r *http.Request) {
	table, err := h.tableService.ResolveLink(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"table": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SettingsHandler handles GET /config
func (h *TableHandler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.tableService.Settings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"config": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TableCountHandler handles PUT /config/table-count
func (h *TableHandler) TableCountHandler(w http.ResponseWriter, r *http.Request) {
	var input tableCountRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	settings, err := h.tableService.SetTableCount(r.Context(), input.TableCount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"config": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ActiveCategoriesHandler handles PUT /config/active-categories
func (h *TableHandler) ActiveCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	var input activeCategoriesRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	settings, err := h.tableService.SetActiveCategories(r.Context(), input.CategoryIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"config": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
