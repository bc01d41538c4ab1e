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

// InventoryService owns per-product stock quantity. All mutations go through
// guarded conditional updates so a committed stock_quantity can never be
// negative, no matter how many request workers race for the same product.
type InventoryService interface {
	// TX-scoped operations: work within a caller-provided transaction.
	// Used by SaleService and PaymentService to keep stock changes atomic
	// with sale state transitions.

	// FetchProductsTx batch-loads the given products and row-locks them in id
	// order (consistent lock ordering prevents deadlocks between concurrent
	// checkouts). Returns ErrNotFound if any id is missing.
	FetchProductsTx(ctx context.Context, tx pgx.Tx, productIDs []int) (map[int]Product, error)

	// DebitStockTx decrements stock with a quantity guard. When the guard
	// rejects the update it returns *InsufficientStockError — an expected
	// outcome, not a defect.
	DebitStockTx(ctx context.Context, tx pgx.Tx, productID, quantity int) error

	// CreditStockTx increments stock (sale reversal, goods receipt).
	CreditStockTx(ctx context.Context, tx pgx.Tx, productID, quantity int) error

	// Standalone operations (manage their own transactions).

	GetStockLevels(ctx context.Context) ([]StockLevel, error)

	// ReceiveStock records a goods receipt: inserts a stock_ins row with a
	// generated code, credits stock, and writes one expense PaymentRecord —
	// all atomically.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest, payments PaymentService) (*StockIn, error)

	// DeductStock is the manual stock-out path (damage, shrinkage). The same
	// guarded decrement protects it.
	DeductStock(ctx context.Context, req DeductStockRequest) error
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

func (s *inventoryService) FetchProductsTx(ctx context.Context, tx pgx.Tx, productIDs []int) (map[int]Product, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, sku, COALESCE(description, ''), price, cost, stock_quantity, reorder_level, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[int]Product, len(productIDs))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Cost,
			&p.StockQuantity, &p.ReorderLevel, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	for _, id := range productIDs {
		if _, ok := products[id]; !ok {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
	}
	return products, nil
}

// DebitStockTx performs the guarded decrement:
//
//	UPDATE products SET stock_quantity = stock_quantity - qty
//	WHERE id = $1 AND stock_quantity >= qty
//
// Zero affected rows means the guard rejected the update; the current state
// is re-read only to build a useful error.
func (s *inventoryService) DebitStockTx(ctx context.Context, tx pgx.Tx, productID, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	ct, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to debit stock for product %d: %w", productID, err)
	}
	if ct.RowsAffected() == 0 {
		var name string
		var available int
		err := tx.QueryRow(ctx,
			"SELECT name, stock_quantity FROM products WHERE id = $1",
			productID,
		).Scan(&name, &available)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read product %d after rejected debit: %w", productID, err)
		}
		return &InsufficientStockError{
			ProductID:   productID,
			ProductName: name,
			Requested:   quantity,
			Available:   available,
		}
	}
	return nil
}

func (s *inventoryService) CreditStockTx(ctx context.Context, tx pgx.Tx, productID, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	ct, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to credit stock for product %d: %w", productID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return nil
}

// ── Standalone operations ─────────────────────────────────────────────────────

func (s *inventoryService) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, sku, stock_quantity, reorder_level
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductID, &sl.ProductName, &sl.SKU, &sl.StockQuantity, &sl.ReorderLevel); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		sl.LowStock = sl.StockQuantity <= sl.ReorderLevel
		levels = append(levels, sl)
	}
	return levels, rows.Err()
}

func (s *inventoryService) ReceiveStock(ctx context.Context, req ReceiveStockRequest, payments PaymentService) (*StockIn, error) {
	if req.Quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if req.UnitCost.IsNegative() {
		return nil, &ValidationError{Field: "unit_cost", Reason: "cannot be negative"}
	}
	receivedDate := req.ReceivedDate
	if receivedDate == "" {
		receivedDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", receivedDate); err != nil {
		return nil, &ValidationError{Field: "received_date", Reason: "must be YYYY-MM-DD"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierName string
	err = tx.QueryRow(ctx, "SELECT name FROM suppliers WHERE id = $1", req.SupplierID).Scan(&supplierName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("supplier %d: %w", req.SupplierID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve supplier: %w", err)
	}

	totalCost := req.UnitCost.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)

	si := &StockIn{
		SupplierID:   req.SupplierID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		TotalCost:    totalCost,
		ReceivedDate: receivedDate,
		ReceivedBy:   req.ReceivedBy,
		Remarks:      req.Remarks,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_ins (supplier_id, product_id, quantity, unit_cost, total_cost, code, received_date, received_by, remarks)
		VALUES ($1, $2, $3, $4, $5, '', $6, $7, $8)
		RETURNING id, created_at
	`, si.SupplierID, si.ProductID, si.Quantity, si.UnitCost, si.TotalCost,
		si.ReceivedDate, si.ReceivedBy, si.Remarks).Scan(&si.ID, &si.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock in: %w", err)
	}

	si.Code = StockInCode(si.ID, time.Now())
	if _, err := tx.Exec(ctx, "UPDATE stock_ins SET code = $1 WHERE id = $2", si.Code, si.ID); err != nil {
		return nil, fmt.Errorf("failed to set stock in code: %w", err)
	}

	if err := s.CreditStockTx(ctx, tx, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}

	if err := payments.RecordPaymentTx(ctx, tx, &PaymentRecord{
		ReferenceType: RefPurchase,
		ReferenceID:   si.ID,
		Amount:        totalCost,
		PaymentType:   PaymentExpense,
		PaymentMethod: string(MethodCash),
		PaidToFrom:    supplierName,
		PaymentDate:   receivedDate,
		BillNumber:    &si.Code,
		RecordedBy:    req.ReceivedBy,
	}); err != nil {
		return nil, fmt.Errorf("failed to record restock payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit goods receipt: %w", err)
	}
	return si, nil
}

func (s *inventoryService) DeductStock(ctx context.Context, req DeductStockRequest) error {
	if req.Quantity < 1 {
		return &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.DebitStockTx(ctx, tx, req.ProductID, req.Quantity); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_outs (product_id, quantity, deducted_by, remarks)
		VALUES ($1, $2, $3, $4)
	`, req.ProductID, req.Quantity, req.DeductedBy, req.Remarks)
	if err != nil {
		return fmt.Errorf("failed to insert stock out: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stock deduction: %w", err)
	}
	return nil
}
