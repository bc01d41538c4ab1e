package web

import (
	"fmt"
	"net/http"
	"strconv"

	"retail-pos/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// apiCheckout handles POST /api/sales/checkout.
func (h *Handler) apiCheckout(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body struct {
		CustomerID    int    `json:"customer_id"`
		PaymentMethod string `json:"payment_method"`
		Lines         []struct {
			ProductID       int    `json:"product_id"`
			Quantity        int    `json:"quantity"`
			DiscountPercent string `json:"discount_percent"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CheckoutRequest{
		CustomerID:    body.CustomerID,
		ActingUserID:  claims.UserID,
		PaymentMethod: body.PaymentMethod,
	}
	for i, l := range body.Lines {
		disc := decimal.Zero
		if l.DiscountPercent != "" {
			var err error
			disc, err = decimal.NewFromString(l.DiscountPercent)
			if err != nil {
				writeError(w, r, fmt.Sprintf("line %d: invalid discount_percent", i+1), "BAD_REQUEST", http.StatusBadRequest)
				return
			}
		}
		req.Lines = append(req.Lines, app.CheckoutLineInput{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			DiscountPercent: disc,
		})
	}

	result, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// apiVerifyPayment handles POST /api/sales/verify-payment.
func (h *Handler) apiVerifyPayment(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body struct {
		SaleID          int    `json:"sale_id"`
		ConfirmationKey string `json:"confirmation_key"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.SaleID <= 0 {
		writeError(w, r, "sale_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if body.ConfirmationKey == "" {
		writeError(w, r, "confirmation_key is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.VerifyPayment(r.Context(), app.VerifyPaymentRequest{
		SaleID:          body.SaleID,
		ConfirmationKey: body.ConfirmationKey,
		ActingUserID:    claims.UserID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetSale handles GET /api/sales/{id}.
func (h *Handler) apiGetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiListSales handles GET /api/sales. Accepts an optional ?status= filter.
func (h *Handler) apiListSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSales(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDeleteSale handles DELETE /api/sales/{id}.
func (h *Handler) apiDeleteSale(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := saleID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(r.Context(), id, claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiListPayments handles GET /api/payments. Accepts an optional ?sale_id= filter.
func (h *Handler) apiListPayments(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("sale_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			writeError(w, r, "invalid sale_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		result, err := h.svc.ListPaymentsForSale(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, result)
		return
	}

	result, err := h.svc.ListPayments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// saleID extracts and validates the {id} URL parameter.
func saleID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid sale id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
