package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"retail-pos/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Sales ─────────────────────────────────────────────────────────────
		r.Post("/api/sales/checkout", h.apiCheckout)
		r.Post("/api/sales/verify-payment", h.apiVerifyPayment)
		r.Get("/api/sales", h.apiListSales)
		r.Get("/api/sales/{id}", h.apiGetSale)
		r.Delete("/api/sales/{id}", h.apiDeleteSale)

		// ── Payments ──────────────────────────────────────────────────────────
		r.Get("/api/payments", h.apiListPayments)

		// ── Inventory ─────────────────────────────────────────────────────────
		r.Get("/api/stock", h.apiGetStockLevels)
		r.Post("/api/stock/receive", h.apiReceiveStock)
		r.Post("/api/stock/deduct", h.apiDeductStock)

		// ── Reports ───────────────────────────────────────────────────────────
		r.Get("/api/reports/sales-dashboard", h.apiSalesDashboard)
		r.Get("/api/reports/sales", h.apiSalesReport)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
