package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceType discriminates what a payment record points at.
type ReferenceType string

const (
	RefSale     ReferenceType = "sale"
	RefPurchase ReferenceType = "purchase"
)

// PaymentType classifies the direction of the money movement.
type PaymentType string

const (
	PaymentIncome  PaymentType = "income"
	PaymentExpense PaymentType = "expense"
)

// PaymentRecord is one append-only money movement, tied to a sale or a
// restock (purchase). Records are never updated after insert; reversal is
// modelled by deleting the owning sale together with its records.
type PaymentRecord struct {
	ID            int             `json:"id"`
	ReferenceType ReferenceType   `json:"reference_type"`
	ReferenceID   int             `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   PaymentType     `json:"payment_type"`
	PaymentMethod string          `json:"payment_method"`
	PaidToFrom    string          `json:"paid_to_from"`
	PaymentDate   string          `json:"payment_date"` // YYYY-MM-DD
	BillNumber    *string         `json:"bill_number,omitempty"`
	RecordedBy    int             `json:"recorded_by"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
