package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod selects the settlement path at checkout.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "Cash"
	MethodQR   PaymentMethod = "QR"
)

// SaleStatus tracks the settlement lifecycle of a sale.
// A sale is created pending (QR) or paid (Cash) and transitions
// pending → paid exactly once, never backward.
type SaleStatus string

const (
	SalePending SaleStatus = "pending"
	SalePaid    SaleStatus = "paid"
)

// PaymentStatus mirrors the invoice-level payment position.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
)

// Sale is one checkout: header plus its ordered line items.
// InvoiceNumber is generated from the sale's own id after insert
// (format INV-YYYY-NNNNNN). PendingPaymentRef holds the gateway's opaque
// confirmation key and is set only on the QR path.
type Sale struct {
	ID                int             `json:"id"`
	CustomerID        int             `json:"customer_id"`
	CustomerName      string          `json:"customer_name"` // joined from customers
	InvoiceNumber     string          `json:"invoice_number"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Discount          decimal.Decimal `json:"discount"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	PaymentMethod     *PaymentMethod  `json:"payment_method,omitempty"`
	Status            SaleStatus      `json:"status"`
	PendingPaymentRef *string         `json:"pending_payment_ref,omitempty"`
	SoldBy            int             `json:"sold_by"`
	Items             []SaleItem      `json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
}

// SaleItem is one line on a sale. UnitPrice is a snapshot taken at checkout
// time; later catalog price changes never alter it. LineTotal is always
// Quantity×UnitPrice − DiscountAmount.
type SaleItem struct {
	ID             int             `json:"id"`
	SaleID         int             `json:"sale_id"`
	ProductID      int             `json:"product_id"`
	ProductName    string          `json:"product_name"` // joined from products
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// CheckoutLine is one requested cart line.
type CheckoutLine struct {
	ProductID       int             `json:"product_id"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CheckoutRequest is the input to SaleService.Checkout.
type CheckoutRequest struct {
	CustomerID    int            `json:"customer_id"`
	SoldBy        int            `json:"sold_by"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	Lines         []CheckoutLine `json:"lines"`
}

// CheckoutResult is the outcome of a committed checkout. QRPayload and
// ConfirmationKey are populated only on the QR path.
type CheckoutResult struct {
	Sale            *Sale          `json:"sale"`
	Payment         *PaymentRecord `json:"payment,omitempty"`
	QRPayload       string         `json:"qr_payload,omitempty"`
	ConfirmationKey string         `json:"confirmation_key,omitempty"`
}

// ReconcileResult is the outcome of a payment reconciliation.
// AlreadySettled is true when the sale was paid before this call; the
// returned Sale and Payment then reflect the existing state untouched.
type ReconcileResult struct {
	Sale           *Sale          `json:"sale"`
	Payment        *PaymentRecord `json:"payment,omitempty"`
	AlreadySettled bool           `json:"already_settled"`
}
