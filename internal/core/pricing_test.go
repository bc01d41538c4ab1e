package core_test

import (
	"testing"
	"time"

	"retail-pos/internal/core"

	"github.com/shopspring/decimal"
)

func TestPriceLine_NoDiscount(t *testing.T) {
	discount, total := core.PriceLine(decimal.NewFromFloat(2.50), 4, decimal.Zero)
	if !discount.IsZero() {
		t.Errorf("Expected zero discount, got %s", discount)
	}
	if !total.Equal(decimal.NewFromFloat(10.00)) {
		t.Errorf("Expected line total 10.00, got %s", total)
	}
}

func TestPriceLine_PercentDiscount(t *testing.T) {
	// 3 × 5.00 = 15.00 gross, 10% discount = 1.50, total = 13.50
	discount, total := core.PriceLine(decimal.NewFromFloat(5.00), 3, decimal.NewFromInt(10))
	if !discount.Equal(decimal.NewFromFloat(1.50)) {
		t.Errorf("Expected discount 1.50, got %s", discount)
	}
	if !total.Equal(decimal.NewFromFloat(13.50)) {
		t.Errorf("Expected line total 13.50, got %s", total)
	}
}

func TestPriceLine_RoundsDiscountNotTotal(t *testing.T) {
	// 1 × 9.99 at 3% = 0.2997 → discount rounds to 0.30, total = 9.69 exactly.
	discount, total := core.PriceLine(decimal.NewFromFloat(9.99), 1, decimal.NewFromInt(3))
	if !discount.Equal(decimal.NewFromFloat(0.30)) {
		t.Errorf("Expected discount 0.30, got %s", discount)
	}
	if !total.Equal(decimal.NewFromFloat(9.69)) {
		t.Errorf("Expected line total 9.69, got %s", total)
	}
}

func TestPriceLine_TotalPlusDiscountEqualsGross(t *testing.T) {
	cases := []struct {
		price string
		qty   int
		disc  string
	}{
		{"0.33", 7, "12.5"},
		{"19.99", 3, "7"},
		{"1.05", 100, "33.33"},
		{"250.00", 2, "100"},
	}
	for _, c := range cases {
		price := decimal.RequireFromString(c.price)
		disc := decimal.RequireFromString(c.disc)
		discountAmount, lineTotal := core.PriceLine(price, c.qty, disc)

		gross := price.Mul(decimal.NewFromInt(int64(c.qty)))
		if !lineTotal.Add(discountAmount).Equal(gross) {
			t.Errorf("%s×%d at %s%%: total %s + discount %s != gross %s",
				c.price, c.qty, c.disc, lineTotal, discountAmount, gross)
		}
		if discountAmount.IsNegative() || lineTotal.IsNegative() {
			t.Errorf("%s×%d at %s%%: negative component (discount=%s total=%s)",
				c.price, c.qty, c.disc, discountAmount, lineTotal)
		}
	}
}

func TestInvoiceNumber_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if got := core.InvoiceNumber(42, now); got != "INV-2026-000042" {
		t.Errorf("Expected INV-2026-000042, got %s", got)
	}
	if got := core.InvoiceNumber(1234567, now); got != "INV-2026-1234567" {
		t.Errorf("Expected INV-2026-1234567 (id wider than padding), got %s", got)
	}
}

func TestStockInCode_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if got := core.StockInCode(7, now); got != "STK-2026-000007" {
		t.Errorf("Expected STK-2026-000007, got %s", got)
	}
}
