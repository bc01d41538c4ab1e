package core_test

import (
	"context"
	"errors"
	"testing"

	"retail-pos/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// testEnv bundles the connection handles the reconcile helpers pass around.
type testEnv struct {
	pool *pgxpool.Pool
	ctx  context.Context
}

// qrCheckout is a helper that creates a pending QR sale for 2 units of product 1.
func qrCheckout(t *testing.T) (*core.CheckoutResult, *fakeGateway, core.SaleService, core.InventoryService, core.PaymentService, testEnv) {
	t.Helper()
	pool, saleSvc, invSvc, paySvc, ctx := setupServices(t)

	gw := &fakeGateway{acknowledged: true}
	result, err := saleSvc.Checkout(ctx, core.CheckoutRequest{
		CustomerID:    1,
		SoldBy:        1,
		PaymentMethod: core.MethodQR,
		Lines:         []core.CheckoutLine{{ProductID: 1, Quantity: 2}},
	}, invSvc, paySvc, gw)
	if err != nil {
		t.Fatalf("QR checkout failed: %v", err)
	}
	return result, gw, saleSvc, invSvc, paySvc, testEnv{pool: pool, ctx: ctx}
}

func TestCheckout_QR_PendingLeavesStockUntouched(t *testing.T) {
	result, _, _, _, paySvc, env := qrCheckout(t)

	sale := result.Sale
	if sale.Status != core.SalePending || sale.PaymentStatus != core.PaymentUnpaid {
		t.Errorf("Expected pending/unpaid, got %s/%s", sale.Status, sale.PaymentStatus)
	}
	if result.QRPayload == "" || result.ConfirmationKey == "" {
		t.Error("Expected QR payload and confirmation key on QR checkout")
	}
	if sale.PendingPaymentRef == nil || *sale.PendingPaymentRef != result.ConfirmationKey {
		t.Error("Expected pending_payment_ref to hold the confirmation key")
	}

	// Stock is reserved logically, not physically: nothing debited yet.
	if got := getStock(t, env.ctx, env.pool, 1); got != 100 {
		t.Errorf("Expected stock untouched at 100, got %d", got)
	}

	// No payment record exists while the sale is pending.
	payments, err := paySvc.GetPaymentsForSale(env.ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetPaymentsForSale failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("Expected no payment records on a pending sale, got %d", len(payments))
	}
}

func TestReconcile_SettlesPendingSale(t *testing.T) {
	result, gw, _, invSvc, paySvc, env := qrCheckout(t)

	rec, err := paySvc.Reconcile(env.ctx, result.Sale.ID, result.ConfirmationKey, invSvc, gw)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.AlreadySettled {
		t.Error("First reconcile must not report AlreadySettled")
	}
	if rec.Sale.Status != core.SalePaid || rec.Sale.PaymentStatus != core.PaymentPaid {
		t.Errorf("Expected paid/paid, got %s/%s", rec.Sale.Status, rec.Sale.PaymentStatus)
	}
	if rec.Sale.PaidAt == nil {
		t.Error("Expected paid_at to be stamped")
	}
	if rec.Payment == nil || rec.Payment.PaymentType != core.PaymentIncome {
		t.Fatalf("Expected an income payment record, got %+v", rec.Payment)
	}
	if !rec.Payment.Amount.Equal(rec.Sale.TotalAmount) {
		t.Errorf("Payment amount %s != sale total %s", rec.Payment.Amount, rec.Sale.TotalAmount)
	}
	if gw.checkCalls != 1 {
		t.Errorf("Expected exactly one gateway confirmation lookup, got %d", gw.checkCalls)
	}

	// The deferred debit happened now.
	if got := getStock(t, env.ctx, env.pool, 1); got != 98 {
		t.Errorf("Expected stock 98 after reconciliation, got %d", got)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	result, gw, _, invSvc, paySvc, env := qrCheckout(t)

	if _, err := paySvc.Reconcile(env.ctx, result.Sale.ID, result.ConfirmationKey, invSvc, gw); err != nil {
		t.Fatalf("First reconcile failed: %v", err)
	}

	// A duplicate confirmation callback settles nothing twice.
	rec, err := paySvc.Reconcile(env.ctx, result.Sale.ID, result.ConfirmationKey, invSvc, gw)
	if err != nil {
		t.Fatalf("Second reconcile failed: %v", err)
	}
	if !rec.AlreadySettled {
		t.Error("Second reconcile must report AlreadySettled")
	}
	if rec.Payment == nil {
		t.Error("Second reconcile must return the existing payment record")
	}

	if got := getStock(t, env.ctx, env.pool, 1); got != 98 {
		t.Errorf("Expected stock debited exactly once (98), got %d", got)
	}
	payments, err := paySvc.GetPaymentsForSale(env.ctx, result.Sale.ID)
	if err != nil {
		t.Fatalf("GetPaymentsForSale failed: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("Expected exactly one payment record, got %d", len(payments))
	}
}

func TestReconcile_KeyMismatch(t *testing.T) {
	result, gw, _, invSvc, paySvc, env := qrCheckout(t)

	_, err := paySvc.Reconcile(env.ctx, result.Sale.ID, "wrong-key", invSvc, gw)
	if !errors.Is(err, core.ErrPaymentNotConfirmed) {
		t.Fatalf("Expected ErrPaymentNotConfirmed, got %v", err)
	}

	// Nothing happened: still pending, stock untouched.
	if got := getStock(t, env.ctx, env.pool, 1); got != 100 {
		t.Errorf("Expected stock untouched at 100, got %d", got)
	}
}

func TestReconcile_GatewayNotAcknowledged(t *testing.T) {
	result, gw, _, invSvc, paySvc, env := qrCheckout(t)
	gw.acknowledged = false

	_, err := paySvc.Reconcile(env.ctx, result.Sale.ID, result.ConfirmationKey, invSvc, gw)
	if !errors.Is(err, core.ErrPaymentNotConfirmed) {
		t.Fatalf("Expected ErrPaymentNotConfirmed, got %v", err)
	}
	if got := getStock(t, env.ctx, env.pool, 1); got != 100 {
		t.Errorf("Expected stock untouched at 100, got %d", got)
	}
}

func TestReconcile_StockAnomaly(t *testing.T) {
	result, gw, _, invSvc, paySvc, env := qrCheckout(t)

	// Drain the stock out from under the pending sale.
	if _, err := env.pool.Exec(env.ctx, "UPDATE products SET stock_quantity = 1 WHERE id = 1"); err != nil {
		t.Fatalf("Failed to drain stock: %v", err)
	}

	_, err := paySvc.Reconcile(env.ctx, result.Sale.ID, result.ConfirmationKey, invSvc, gw)
	if !errors.Is(err, core.ErrConsistencyAnomaly) {
		t.Fatalf("Expected ErrConsistencyAnomaly, got %v", err)
	}

	// The failed reconciliation left the sale pending and did not half-debit.
	sale, err := core.NewSaleService(env.pool).GetSale(env.ctx, result.Sale.ID)
	if err != nil {
		t.Fatalf("GetSale failed: %v", err)
	}
	if sale.PaymentStatus != core.PaymentUnpaid {
		t.Errorf("Expected sale still unpaid after anomaly, got %s", sale.PaymentStatus)
	}
	if got := getStock(t, env.ctx, env.pool, 1); got != 1 {
		t.Errorf("Expected stock unchanged at 1, got %d", got)
	}
}

func TestDeleteSale_PaidRestoresStock(t *testing.T) {
	pool, saleSvc, invSvc, paySvc, ctx := setupServices(t)

	result, err := saleSvc.Checkout(ctx, core.CheckoutRequest{
		CustomerID:    1,
		SoldBy:        1,
		PaymentMethod: core.MethodCash,
		Lines:         []core.CheckoutLine{{ProductID: 1, Quantity: 5}},
	}, invSvc, paySvc, nil)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if got := getStock(t, ctx, pool, 1); got != 95 {
		t.Fatalf("Expected stock 95 before delete, got %d", got)
	}

	if err := saleSvc.DeleteSale(ctx, result.Sale.ID, invSvc); err != nil {
		t.Fatalf("DeleteSale failed: %v", err)
	}

	if got := getStock(t, ctx, pool, 1); got != 100 {
		t.Errorf("Expected stock restored to 100, got %d", got)
	}
	if _, err := saleSvc.GetSale(ctx, result.Sale.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted sale, got %v", err)
	}
	payments, err := paySvc.GetPaymentsForSale(ctx, result.Sale.ID)
	if err != nil {
		t.Fatalf("GetPaymentsForSale failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("Expected payment records deleted with the sale, got %d", len(payments))
	}
}

func TestDeleteSale_PendingDoesNotRestoreStock(t *testing.T) {
	result, _, saleSvc, invSvc, _, env := qrCheckout(t)

	// A pending QR sale never debited stock; deleting it must not credit any back.
	if err := saleSvc.DeleteSale(env.ctx, result.Sale.ID, invSvc); err != nil {
		t.Fatalf("DeleteSale failed: %v", err)
	}
	if got := getStock(t, env.ctx, env.pool, 1); got != 100 {
		t.Errorf("Expected stock still 100 (never debited, never credited), got %d", got)
	}
}

func TestDeleteSale_NotFound(t *testing.T) {
	_, saleSvc, invSvc, _, ctx := setupServices(t)
	if err := saleSvc.DeleteSale(ctx, 4242, invSvc); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// reconcile amount sanity: a sale for 2 × 10.00 settles at 20.00.
func TestReconcile_AmountMatchesSale(t *testing.T) {
	result, gw, _, invSvc, paySvc, env := qrCheckout(t)

	rec, err := paySvc.Reconcile(env.ctx, result.Sale.ID, result.ConfirmationKey, invSvc, gw)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !rec.Payment.Amount.Equal(decimal.NewFromFloat(20.00)) {
		t.Errorf("Expected settled amount 20.00, got %s", rec.Payment.Amount)
	}
}
