package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"retail-pos/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service-layer errors onto HTTP status codes. Every
// handler that calls into the ApplicationService funnels its error through
// here so the mapping stays in one place.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeError(w, r, ve.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var stockErr *core.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeError(w, r, stockErr.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
		return
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, "record not found", "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrPaymentNotConfirmed):
		writeError(w, r, "payment has not been confirmed by the provider", "PAYMENT_NOT_CONFIRMED", http.StatusConflict)
	case errors.Is(err, core.ErrGatewayUnavailable):
		writeError(w, r, "payment gateway unavailable", "GATEWAY_UNAVAILABLE", http.StatusBadGateway)
	case errors.Is(err, core.ErrConsistencyAnomaly):
		writeError(w, r, "payment could not be applied, contact support", "CONSISTENCY_ANOMALY", http.StatusInternalServerError)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
