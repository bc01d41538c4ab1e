package app

import (
	"context"

	"retail-pos/internal/activity"
	"retail-pos/internal/core"
)

type appService struct {
	sales     core.SaleService
	payments  core.PaymentService
	inventory core.InventoryService
	users     core.UserService
	reports   core.ReportingService
	gateway   core.PaymentGateway
	audit     *activity.Recorder // optional
}

// NewAppService constructs an appService that satisfies ApplicationService.
// gateway may be nil when no payment provider is configured (QR checkouts
// then fail with ErrGatewayUnavailable); audit may be nil.
func NewAppService(
	sales core.SaleService,
	payments core.PaymentService,
	inventory core.InventoryService,
	users core.UserService,
	reports core.ReportingService,
	gateway core.PaymentGateway,
	audit *activity.Recorder,
) ApplicationService {
	return &appService{
		sales:     sales,
		payments:  payments,
		inventory: inventory,
		users:     users,
		reports:   reports,
		gateway:   gateway,
		audit:     audit,
	}
}

func (s *appService) record(userID int, action, module string, recordID int) {
	if s.audit != nil {
		s.audit.Record(userID, action, module, recordID)
	}
}

func (s *appService) AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (s *appService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	lines := make([]core.CheckoutLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, core.CheckoutLine{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
		})
	}

	result, err := s.sales.Checkout(ctx, core.CheckoutRequest{
		CustomerID:    req.CustomerID,
		SoldBy:        req.ActingUserID,
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
		Lines:         lines,
	}, s.inventory, s.payments, s.gateway)
	if err != nil {
		return nil, err
	}

	s.record(req.ActingUserID, "created", "sales", result.Sale.ID)
	if result.Sale.Status == core.SalePaid {
		s.record(req.ActingUserID, "paid", "sales", result.Sale.ID)
	}

	return &CheckoutResult{
		Sale:            result.Sale,
		Payment:         result.Payment,
		QRPayload:       result.QRPayload,
		ConfirmationKey: result.ConfirmationKey,
	}, nil
}

func (s *appService) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*ReconcileResult, error) {
	result, err := s.payments.Reconcile(ctx, req.SaleID, req.ConfirmationKey, s.inventory, s.gateway)
	if err != nil {
		return nil, err
	}
	if !result.AlreadySettled {
		s.record(req.ActingUserID, "paid", "sales", req.SaleID)
	}
	return &ReconcileResult{
		Sale:           result.Sale,
		Payment:        result.Payment,
		AlreadySettled: result.AlreadySettled,
	}, nil
}

func (s *appService) DeleteSale(ctx context.Context, saleID, actingUserID int) error {
	if err := s.sales.DeleteSale(ctx, saleID, s.inventory); err != nil {
		return err
	}
	s.record(actingUserID, "deleted", "sales", saleID)
	return nil
}

func (s *appService) GetSale(ctx context.Context, saleID int) (*SaleResult, error) {
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) ListSales(ctx context.Context, status string) (*SaleListResult, error) {
	var filter *core.SaleStatus
	if status != "" {
		st := core.SaleStatus(status)
		filter = &st
	}
	sales, err := s.sales.GetSales(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

func (s *appService) ListPayments(ctx context.Context) (*PaymentListResult, error) {
	payments, err := s.payments.GetPayments(ctx)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Payments: payments}, nil
}

func (s *appService) ListPaymentsForSale(ctx context.Context, saleID int) (*PaymentListResult, error) {
	payments, err := s.payments.GetPaymentsForSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Payments: payments}, nil
}

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	levels, err := s.inventory.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*StockInResult, error) {
	si, err := s.inventory.ReceiveStock(ctx, core.ReceiveStockRequest{
		SupplierID:   req.SupplierID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		ReceivedDate: req.ReceivedDate,
		ReceivedBy:   req.ActingUserID,
		Remarks:      req.Remarks,
	}, s.payments)
	if err != nil {
		return nil, err
	}
	s.record(req.ActingUserID, "received", "stock", si.ID)
	return &StockInResult{StockIn: si}, nil
}

func (s *appService) DeductStock(ctx context.Context, req DeductStockRequest) error {
	err := s.inventory.DeductStock(ctx, core.DeductStockRequest{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		DeductedBy: req.ActingUserID,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return err
	}
	s.record(req.ActingUserID, "deducted", "stock", req.ProductID)
	return nil
}

func (s *appService) GetSalesDashboard(ctx context.Context) (*DashboardResult, error) {
	d, err := s.reports.GetSalesDashboard(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{Dashboard: d}, nil
}

func (s *appService) GetSalesReport(ctx context.Context, fromDate, toDate string) (*SalesReportResult, error) {
	rows, err := s.reports.GetSalesReport(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return &SalesReportResult{From: fromDate, To: toDate, Rows: rows}, nil
}
