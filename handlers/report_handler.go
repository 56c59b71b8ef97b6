package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dosada05/judo-pools/services"
	"github.com/Dosada05/judo-pools/storage"
)

type ReportHandler struct {
	statsService  services.StatsService
	exportService services.ExportService
}

func NewReportHandler(ss services.StatsService, es services.ExportService) *ReportHandler {
	return &ReportHandler{statsService: ss, exportService: es}
}

// ClubStatsHandler handles GET /stats/clubs
func (h *ReportHandler) ClubStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.ClubStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportHandler handles GET /categories/{categoryID}/export and streams the workbook.
func (h *ReportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sheet, err := h.exportService.ScoreSheet(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", storage.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(sheet.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(sheet.Data)))
	if sheet.URL != "" {
		w.Header().Set("X-Archive-URL", sheet.URL)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sheet.Data)
}
