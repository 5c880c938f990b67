package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/renovapanel/renova/pkg/faults"
	"github.com/renovapanel/renova/pkg/reports"
)

// ReportHandlers handles dashboard and sales ledger HTTP requests
type ReportHandlers struct {
	reportService reports.Service
}

// NewReportHandlers creates a new ReportHandlers
func NewReportHandlers(reportService reports.Service) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// RegisterRoutes registers report routes
func (h *ReportHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/sales", h.ListSales).Methods("GET")
}

// GetStats returns the dashboard snapshot
func (h *ReportHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportService.ComputeStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListSales returns the sales ledger, optionally filtered by
// ?month=&year= query parameters
func (h *ReportHandlers) ListSales(w http.ResponseWriter, r *http.Request) {
	filter := &reports.SalesFilter{}

	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, faults.InvalidInput("invalid month %q", raw))
			return
		}
		filter.Month = &month
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, faults.InvalidInput("invalid year %q", raw))
			return
		}
		filter.Year = &year
	}

	sales, err := h.reportService.ListSales(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}
