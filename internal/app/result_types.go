package app

import "retail-pos/internal/core"

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// CheckoutResult is returned by Checkout.
type CheckoutResult struct {
	Sale            *core.Sale          `json:"sale"`
	Payment         *core.PaymentRecord `json:"payment,omitempty"`
	QRPayload       string              `json:"qr_payload,omitempty"`
	ConfirmationKey string              `json:"confirmation_key,omitempty"`
}

// ReconcileResult is returned by VerifyPayment.
type ReconcileResult struct {
	Sale           *core.Sale          `json:"sale"`
	Payment        *core.PaymentRecord `json:"payment,omitempty"`
	AlreadySettled bool                `json:"already_settled"`
}

// SaleResult is returned by GetSale.
type SaleResult struct {
	Sale *core.Sale `json:"sale"`
}

// SaleListResult is returned by ListSales.
type SaleListResult struct {
	Sales []core.Sale `json:"sales"`
}

// PaymentListResult is returned by ListPayments and ListPaymentsForSale.
type PaymentListResult struct {
	Payments []core.PaymentRecord `json:"payments"`
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel `json:"levels"`
}

// StockInResult is returned by ReceiveStock.
type StockInResult struct {
	StockIn *core.StockIn `json:"stock_in"`
}

// DashboardResult is returned by GetSalesDashboard.
type DashboardResult struct {
	Dashboard *core.SalesDashboard `json:"dashboard"`
}

// SalesReportResult is returned by GetSalesReport.
type SalesReportResult struct {
	From string                `json:"from"`
	To   string                `json:"to"`
	Rows []core.SalesReportRow `json:"rows"`
}
