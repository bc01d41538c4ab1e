package app

import (
	"github.com/shopspring/decimal"
)

// CheckoutRequest is the input for creating a new sale.
type CheckoutRequest struct {
	CustomerID    int
	ActingUserID  int
	PaymentMethod string // "Cash" or "QR"
	Lines         []CheckoutLineInput
}

// CheckoutLineInput is a single cart line within a CheckoutRequest.
type CheckoutLineInput struct {
	ProductID       int
	Quantity        int
	DiscountPercent decimal.Decimal
}

// VerifyPaymentRequest is the input for reconciling a payment confirmation.
type VerifyPaymentRequest struct {
	SaleID          int
	ConfirmationKey string
	ActingUserID    int
}

// ReceiveStockRequest is the input for recording a goods receipt.
type ReceiveStockRequest struct {
	SupplierID   int
	ProductID    int
	Quantity     int
	UnitCost     decimal.Decimal
	ReceivedDate string // YYYY-MM-DD, empty = today
	ActingUserID int
	Remarks      string
}

// DeductStockRequest is the input for a manual stock deduction.
type DeductStockRequest struct {
	ProductID    int
	Quantity     int
	ActingUserID int
	Remarks      string
}
