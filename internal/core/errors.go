package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the checkout and reconciliation workflow. Callers match
// with errors.Is/errors.As; the web adapter maps them onto HTTP statuses.
var (
	// ErrNotFound marks a bad id reference (sale, product, customer).
	ErrNotFound = errors.New("not found")

	// ErrGatewayUnavailable marks a payment-gateway transport failure or
	// timeout. On the QR checkout path it aborts the whole sale.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrPaymentNotConfirmed marks a reconciliation attempt whose confirmation
	// key did not match the pending sale or whose payment the gateway does not
	// report as acknowledged. The sale is left untouched.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")

	// ErrConsistencyAnomaly marks stock that went missing between provisional
	// acceptance and reconciliation. It is alerting-worthy and is never
	// silently absorbed.
	ErrConsistencyAnomaly = errors.New("consistency anomaly")
)

// InsufficientStockError reports a requested quantity exceeding committed
// stock. It is an expected business outcome, not a defect: concurrent
// checkouts racing for the last units are serialized by the guarded
// decrement, and the loser observes this error.
type InsufficientStockError struct {
	ProductID   int
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id=%d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is (or wraps) an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// ValidationError reports bad input shape, rejected before any transaction opens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
