package app

import (
	"context"
)

// ApplicationService is the single interface all transport adapters call.
// It decouples HTTP handling from business logic: implementations contain no
// status codes, no JSON shaping, and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error)

	// Checkout converts a cart into a persisted sale plus its payment
	// artifact: immediate settlement for Cash, a pending QR for QR.
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)

	// VerifyPayment reconciles an external payment confirmation against a
	// pending sale. Safe to call repeatedly with identical effect.
	VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*ReconcileResult, error)

	// DeleteSale reverses and removes a sale, restoring stock when the sale
	// had settled.
	DeleteSale(ctx context.Context, saleID, actingUserID int) error

	GetSale(ctx context.Context, saleID int) (*SaleResult, error)
	ListSales(ctx context.Context, status string) (*SaleListResult, error)

	ListPayments(ctx context.Context) (*PaymentListResult, error)
	ListPaymentsForSale(ctx context.Context, saleID int) (*PaymentListResult, error)

	GetStockLevels(ctx context.Context) (*StockResult, error)

	// ReceiveStock records a goods receipt: stock credit, stock-in row, and
	// the matching expense payment record.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*StockInResult, error)

	// DeductStock is the manual stock-out path (damage, shrinkage).
	DeductStock(ctx context.Context, req DeductStockRequest) error

	GetSalesDashboard(ctx context.Context) (*DashboardResult, error)
	GetSalesReport(ctx context.Context, fromDate, toDate string) (*SalesReportResult, error)
}
