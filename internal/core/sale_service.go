package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleService owns the checkout workflow and the sale aggregate lifecycle.
// A checkout either fully commits (sale, items, stock effect, payment
// artifact) or rolls back entirely; there is no partial sale.
type SaleService interface {
	// Checkout validates and prices the cart, persists the sale and its items,
	// and settles per payment method: Cash debits stock and records the income
	// payment synchronously; QR requests a payment QR from the gateway and
	// stores its confirmation key, leaving stock untouched until reconciliation.
	Checkout(ctx context.Context, req CheckoutRequest, inv InventoryService, payments PaymentService, gw PaymentGateway) (*CheckoutResult, error)

	// DeleteSale reverses a sale: credits stock back for every item (only when
	// the sale was paid — a still-pending sale never debited stock), then
	// deletes payment records, items, and the sale, atomically.
	DeleteSale(ctx context.Context, saleID int, inv InventoryService) error

	GetSale(ctx context.Context, saleID int) (*Sale, error)
	GetSales(ctx context.Context, status *SaleStatus) ([]Sale, error)
}

type saleService struct {
	pool *pgxpool.Pool
}

func NewSaleService(pool *pgxpool.Pool) SaleService {
	return &saleService{pool: pool}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func (s *saleService) Checkout(ctx context.Context, req CheckoutRequest, inv InventoryService, payments PaymentService, gw PaymentGateway) (*CheckoutResult, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var customerName string
	err = tx.QueryRow(ctx, "SELECT name FROM customers WHERE id = $1", req.CustomerID).Scan(&customerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", req.CustomerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	// Batch-load and row-lock every referenced product once. The lock both
	// avoids N lookups and serializes concurrent checkouts on the same rows.
	ids := make([]int, 0, len(req.Lines))
	for _, l := range req.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := inv.FetchProductsTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	// Verify stock for the whole cart before creating anything. The first
	// failing line aborts the checkout; no partial sale is created.
	for _, l := range req.Lines {
		p := products[l.ProductID]
		if l.Quantity > p.StockQuantity {
			return nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   l.Quantity,
				Available:   p.StockQuantity,
			}
		}
	}

	// Price every line with the shared pricing function; unit prices are
	// snapshots of the catalog price at this moment.
	var totalAmount, totalDiscount decimal.Decimal
	items := make([]SaleItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		p := products[l.ProductID]
		discountAmount, lineTotal := PriceLine(p.Price, l.Quantity, l.DiscountPercent)
		totalAmount = totalAmount.Add(lineTotal)
		totalDiscount = totalDiscount.Add(discountAmount)
		items = append(items, SaleItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       l.Quantity,
			UnitPrice:      p.Price,
			DiscountAmount: discountAmount,
			LineTotal:      lineTotal,
		})
	}

	status, paymentStatus := SalePending, PaymentUnpaid
	if req.PaymentMethod == MethodCash {
		status, paymentStatus = SalePaid, PaymentPaid
	}

	sale := &Sale{
		CustomerID:    req.CustomerID,
		CustomerName:  customerName,
		TotalAmount:   totalAmount,
		Discount:      totalDiscount,
		PaymentStatus: paymentStatus,
		Status:        status,
		SoldBy:        req.SoldBy,
	}
	method := req.PaymentMethod
	sale.PaymentMethod = &method

	err = tx.QueryRow(ctx, `
		INSERT INTO sales (customer_id, invoice_number, total_amount, discount, payment_status, payment_method, status, sold_by)
		VALUES ($1, '', $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, sale.CustomerID, sale.TotalAmount, sale.Discount, sale.PaymentStatus,
		string(req.PaymentMethod), sale.Status, sale.SoldBy).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	for i := range items {
		items[i].SaleID = sale.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, discount_amount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, sale.ID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice,
			items[i].DiscountAmount, items[i].LineTotal).Scan(&items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale item %d: %w", i+1, err)
		}
	}
	sale.Items = items

	// Permanent invoice number is deterministic from the sale's own id.
	sale.InvoiceNumber = InvoiceNumber(sale.ID, time.Now())
	if _, err := tx.Exec(ctx, "UPDATE sales SET invoice_number = $1 WHERE id = $2", sale.InvoiceNumber, sale.ID); err != nil {
		return nil, fmt.Errorf("failed to set invoice number: %w", err)
	}

	result := &CheckoutResult{Sale: sale}

	switch req.PaymentMethod {
	case MethodCash:
		// Stock was verified above and the rows are still locked, so the
		// guarded debit can only fail on a genuine anomaly — which aborts
		// and rolls back the entire sale.
		for _, it := range items {
			if err := inv.DebitStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return nil, err
			}
		}

		payment := &PaymentRecord{
			ReferenceType: RefSale,
			ReferenceID:   sale.ID,
			Amount:        totalAmount,
			PaymentType:   PaymentIncome,
			PaymentMethod: string(MethodCash),
			PaidToFrom:    customerName,
			PaymentDate:   time.Now().Format("2006-01-02"),
			BillNumber:    &sale.InvoiceNumber,
			RecordedBy:    req.SoldBy,
		}
		if err := payments.RecordPaymentTx(ctx, tx, payment); err != nil {
			return nil, fmt.Errorf("failed to record cash payment: %w", err)
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, "UPDATE sales SET paid_at = $1 WHERE id = $2", now, sale.ID); err != nil {
			return nil, fmt.Errorf("failed to stamp paid_at: %w", err)
		}
		sale.PaidAt = &now
		result.Payment = payment

	case MethodQR:
		// Stock is not touched on this path until reconciliation. A gateway
		// failure rolls the whole sale back — no orphaned pending sale with
		// no way to be paid.
		if gw == nil {
			return nil, fmt.Errorf("QR checkout: %w", ErrGatewayUnavailable)
		}
		artifact, err := gw.GenerateQR(ctx, totalAmount, sale.InvoiceNumber)
		if err != nil {
			return nil, fmt.Errorf("QR generation for sale %d failed: %w", sale.ID, err)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE sales SET pending_payment_ref = $1 WHERE id = $2",
			artifact.ConfirmationKey, sale.ID,
		); err != nil {
			return nil, fmt.Errorf("failed to store pending payment ref: %w", err)
		}
		sale.PendingPaymentRef = &artifact.ConfirmationKey
		result.QRPayload = artifact.Payload
		result.ConfirmationKey = artifact.ConfirmationKey
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}
	return result, nil
}

func validateCheckout(req CheckoutRequest) error {
	if req.PaymentMethod != MethodCash && req.PaymentMethod != MethodQR {
		return &ValidationError{Field: "payment_method", Reason: "must be Cash or QR"}
	}
	if len(req.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "checkout must have at least one line"}
	}
	seen := make(map[int]bool, len(req.Lines))
	for i, l := range req.Lines {
		if l.ProductID < 1 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].product_id", i), Reason: "required"}
		}
		if seen[l.ProductID] {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].product_id", i), Reason: "duplicate product in cart"}
		}
		seen[l.ProductID] = true
		if l.Quantity < 1 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].quantity", i), Reason: "must be at least 1"}
		}
		if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(oneHundred) {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].discount_percent", i), Reason: "must be between 0 and 100"}
		}
	}
	return nil
}

// ── Deletion / reversal ──────────────────────────────────────────────────────

func (s *saleService) DeleteSale(ctx context.Context, saleID int, inv InventoryService) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var paymentStatus PaymentStatus
	err = tx.QueryRow(ctx,
		"SELECT payment_status FROM sales WHERE id = $1 FOR UPDATE",
		saleID,
	).Scan(&paymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch sale %d: %w", saleID, err)
	}

	// Stock was only ever debited once the sale reached paid; crediting a
	// never-paid sale back would conjure stock out of nothing.
	if paymentStatus == PaymentPaid {
		items, err := fetchSaleItemsQ(ctx, tx, saleID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := inv.CreditStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock for sale %d: %w", saleID, err)
			}
		}
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM payments WHERE reference_type = $1 AND reference_id = $2",
		RefSale, saleID,
	); err != nil {
		return fmt.Errorf("failed to delete payment records for sale %d: %w", saleID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM sale_items WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("failed to delete sale items for sale %d: %w", saleID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM sales WHERE id = $1", saleID); err != nil {
		return fmt.Errorf("failed to delete sale %d: %w", saleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sale deletion: %w", err)
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const saleColumns = `
	s.id, s.customer_id, c.name, s.invoice_number, s.total_amount, s.discount,
	s.payment_status, s.payment_method, s.status, s.pending_payment_ref,
	s.sold_by, s.created_at, s.paid_at`

func (s *saleService) GetSale(ctx context.Context, saleID int) (*Sale, error) {
	return fetchSaleQ(ctx, s.pool, saleID)
}

func fetchSaleQ(ctx context.Context, q pgxQuerier, saleID int) (*Sale, error) {
	var sale Sale
	var method *string
	err := q.QueryRow(ctx, `
		SELECT`+saleColumns+`
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1
	`, saleID).Scan(
		&sale.ID, &sale.CustomerID, &sale.CustomerName, &sale.InvoiceNumber,
		&sale.TotalAmount, &sale.Discount, &sale.PaymentStatus, &method,
		&sale.Status, &sale.PendingPaymentRef, &sale.SoldBy, &sale.CreatedAt, &sale.PaidAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale %d: %w", saleID, err)
	}
	if method != nil {
		m := PaymentMethod(*method)
		sale.PaymentMethod = &m
	}

	items, err := fetchSaleItemsQ(ctx, q, saleID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *saleService) GetSales(ctx context.Context, status *SaleStatus) ([]Sale, error) {
	query := `
		SELECT` + saleColumns + `
		FROM sales s
		JOIN customers c ON c.id = s.customer_id`
	args := []any{}
	if status != nil {
		query += " WHERE s.status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY s.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		var method *string
		if err := rows.Scan(
			&sale.ID, &sale.CustomerID, &sale.CustomerName, &sale.InvoiceNumber,
			&sale.TotalAmount, &sale.Discount, &sale.PaymentStatus, &method,
			&sale.Status, &sale.PendingPaymentRef, &sale.SoldBy, &sale.CreatedAt, &sale.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if method != nil {
			m := PaymentMethod(*method)
			sale.PaymentMethod = &m
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func fetchSaleItemsQ(ctx context.Context, q pgxQuerier, saleID int) ([]SaleItem, error) {
	rows, err := q.Query(ctx, `
		SELECT si.id, si.sale_id, si.product_id, p.name, si.quantity, si.unit_price, si.discount_amount, si.line_total
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY si.id
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.DiscountAmount, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
