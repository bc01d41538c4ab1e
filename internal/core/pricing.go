package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PriceLine computes the discount amount and line total for one sale line.
// It is the single pricing function used both by the checkout pre-check and
// by persistence, so the two can never drift.
//
// Rounding rule: the discount is rounded to 2 decimals at line level and the
// line total is derived by exact subtraction, so
// lineTotal == quantity×unitPrice − discountAmount always holds.
func PriceLine(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) (discountAmount, lineTotal decimal.Decimal) {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discountAmount = gross.Mul(discountPercent).Div(oneHundred).Round(2)
	lineTotal = gross.Sub(discountAmount)
	return discountAmount, lineTotal
}

// InvoiceNumber derives the permanent invoice number from a sale's own id:
// INV-<year>-<6-digit zero-padded id>.
func InvoiceNumber(saleID int, now time.Time) string {
	return fmt.Sprintf("INV-%d-%06d", now.Year(), saleID)
}

// StockInCode derives the goods-receipt code from a stock-in row's own id:
// STK-<year>-<6-digit zero-padded id>.
func StockInCode(stockInID int, now time.Time) string {
	return fmt.Sprintf("STK-%d-%06d", now.Year(), stockInID)
}
