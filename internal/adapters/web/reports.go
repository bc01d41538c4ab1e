package web

import (
	"net/http"
	"time"
)

// apiSalesDashboard handles GET /api/reports/sales-dashboard.
func (h *Handler) apiSalesDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetSalesDashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSalesReport handles GET /api/reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Both bounds default to the last 30 days when omitted.
func (h *Handler) apiSalesReport(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if to == "" {
		to = time.Now().Format("2006-01-02")
	}
	if from == "" {
		from = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			writeError(w, r, "dates must be YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.GetSalesReport(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
