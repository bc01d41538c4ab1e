package web

import (
	"net/http"

	"retail-pos/internal/app"

	"github.com/shopspring/decimal"
)

// apiGetStockLevels handles GET /api/stock.
func (h *Handler) apiGetStockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiReceiveStock handles POST /api/stock/receive.
func (h *Handler) apiReceiveStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body struct {
		SupplierID   int    `json:"supplier_id"`
		ProductID    int    `json:"product_id"`
		Quantity     int    `json:"quantity"`
		UnitCost     string `json:"unit_cost"`
		ReceivedDate string `json:"received_date"`
		Remarks      string `json:"remarks"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if body.SupplierID <= 0 {
		writeError(w, r, "supplier_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if body.ProductID <= 0 {
		writeError(w, r, "product_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	cost, err := decimal.NewFromString(body.UnitCost)
	if err != nil || cost.IsNegative() {
		writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ReceiveStock(r.Context(), app.ReceiveStockRequest{
		SupplierID:   body.SupplierID,
		ProductID:    body.ProductID,
		Quantity:     body.Quantity,
		UnitCost:     cost,
		ReceivedDate: body.ReceivedDate,
		ActingUserID: claims.UserID,
		Remarks:      body.Remarks,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// apiDeductStock handles POST /api/stock/deduct.
func (h *Handler) apiDeductStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var body struct {
		ProductID int    `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Remarks   string `json:"remarks"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ProductID <= 0 {
		writeError(w, r, "product_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	err := h.svc.DeductStock(r.Context(), app.DeductStockRequest{
		ProductID:    body.ProductID,
		Quantity:     body.Quantity,
		ActingUserID: claims.UserID,
		Remarks:      body.Remarks,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
