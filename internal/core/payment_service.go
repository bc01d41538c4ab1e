package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentService owns the append-only payment ledger and the reconciliation
// of asynchronous gateway confirmations against pending sales.
type PaymentService interface {
	// Reconcile applies an external payment confirmation to a pending sale
	// exactly once. An already-paid sale returns the existing state
	// idempotently; a mismatched or unacknowledged confirmation returns
	// ErrPaymentNotConfirmed and leaves the sale untouched.
	Reconcile(ctx context.Context, saleID int, confirmationKey string, inv InventoryService, gw PaymentGateway) (*ReconcileResult, error)

	// RecordPaymentTx appends one payment record within the caller's
	// transaction, refusing a duplicate for the same reference.
	RecordPaymentTx(ctx context.Context, tx pgx.Tx, rec *PaymentRecord) error

	// FindByReferenceTx returns the payment record for a reference, or nil
	// when none exists yet.
	FindByReferenceTx(ctx context.Context, tx pgx.Tx, refType ReferenceType, refID int) (*PaymentRecord, error)

	GetPayments(ctx context.Context) ([]PaymentRecord, error)
	GetPaymentsForSale(ctx context.Context, saleID int) ([]PaymentRecord, error)
}

type paymentService struct {
	pool *pgxpool.Pool
}

func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool}
}

// ── Reconciliation ───────────────────────────────────────────────────────────

// Reconcile is the at-most-once settlement step for the QR path. The sale row
// is locked FOR UPDATE and its payment_status re-checked inside the same
// transaction that performs the stock debit, so two near-simultaneous
// confirmation callbacks produce exactly one debit and one payment record.
func (s *paymentService) Reconcile(ctx context.Context, saleID int, confirmationKey string, inv InventoryService, gw PaymentGateway) (*ReconcileResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var paymentStatus PaymentStatus
	var pendingRef *string
	err = tx.QueryRow(ctx,
		"SELECT payment_status, pending_payment_ref FROM sales WHERE id = $1 FOR UPDATE",
		saleID,
	).Scan(&paymentStatus, &pendingRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale %d: %w", saleID, err)
	}

	// Duplicate or retried confirmation: the sale is already settled. Return
	// the existing state without touching stock or inserting anything.
	if paymentStatus == PaymentPaid {
		existing, err := s.FindByReferenceTx(ctx, tx, RefSale, saleID)
		if err != nil {
			return nil, err
		}
		sale, err := fetchSaleQ(ctx, tx, saleID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit reconcile read: %w", err)
		}
		return &ReconcileResult{Sale: sale, Payment: existing, AlreadySettled: true}, nil
	}

	// The client-supplied key is only a lookup handle. It must match the
	// reference stored at checkout time, and the gateway itself must report
	// the payment as acknowledged before any effect is applied.
	if pendingRef == nil || *pendingRef != confirmationKey {
		return nil, fmt.Errorf("sale %d: confirmation key mismatch: %w", saleID, ErrPaymentNotConfirmed)
	}
	if gw != nil {
		status, err := gw.CheckConfirmation(ctx, confirmationKey)
		if err != nil {
			return nil, fmt.Errorf("confirmation lookup for sale %d failed: %w", saleID, err)
		}
		if !status.Acknowledged {
			return nil, fmt.Errorf("sale %d: gateway has not acknowledged payment: %w", saleID, ErrPaymentNotConfirmed)
		}
	}

	sale, err := fetchSaleQ(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}

	// Apply the deferred stock debit. The sale was provisionally accepted
	// without reserving stock, so a rejected debit here means stock went
	// missing in between — a fatal reconciliation error, never ignored.
	for _, it := range sale.Items {
		if err := inv.DebitStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			if IsInsufficientStock(err) {
				log.Printf("FATAL reconcile anomaly: sale %d product %d: %v", saleID, it.ProductID, err)
				return nil, fmt.Errorf("sale %d, product %d: %v: %w", saleID, it.ProductID, err, ErrConsistencyAnomaly)
			}
			return nil, err
		}
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		UPDATE sales SET status = $1, payment_status = $2, paid_at = $3 WHERE id = $4
	`, SalePaid, PaymentPaid, now, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark sale %d paid: %w", saleID, err)
	}
	sale.Status = SalePaid
	sale.PaymentStatus = PaymentPaid
	sale.PaidAt = &now

	payment := &PaymentRecord{
		ReferenceType: RefSale,
		ReferenceID:   saleID,
		Amount:        sale.TotalAmount,
		PaymentType:   PaymentIncome,
		PaymentMethod: string(MethodQR),
		PaidToFrom:    sale.CustomerName,
		PaymentDate:   now.Format("2006-01-02"),
		BillNumber:    &sale.InvoiceNumber,
		RecordedBy:    sale.SoldBy,
	}
	if err := s.RecordPaymentTx(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to record reconciled payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return &ReconcileResult{Sale: sale, Payment: payment}, nil
}

// ── Payment records ──────────────────────────────────────────────────────────

// RecordPaymentTx inserts one payment record, checking for an existing record
// on the same reference first. The check runs inside the caller's transaction,
// which must already hold the lock that serializes writers for the reference
// (the sale row for sales, the stock_in insert for purchases).
func (s *paymentService) RecordPaymentTx(ctx context.Context, tx pgx.Tx, rec *PaymentRecord) error {
	existing, err := s.FindByReferenceTx(ctx, tx, rec.ReferenceType, rec.ReferenceID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("payment record already exists for %s %d", rec.ReferenceType, rec.ReferenceID)
	}

	if rec.Status == "" {
		rec.Status = "completed"
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (reference_type, reference_id, amount, payment_type, payment_method, paid_to_from, payment_date, bill_number, recorded_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, rec.ReferenceType, rec.ReferenceID, rec.Amount, rec.PaymentType, rec.PaymentMethod,
		rec.PaidToFrom, rec.PaymentDate, rec.BillNumber, rec.RecordedBy, rec.Status,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment record: %w", err)
	}
	return nil
}

const paymentColumns = `
	id, reference_type, reference_id, amount, payment_type, payment_method,
	paid_to_from, payment_date::text, bill_number, recorded_by, status, created_at`

func (s *paymentService) FindByReferenceTx(ctx context.Context, tx pgx.Tx, refType ReferenceType, refID int) (*PaymentRecord, error) {
	var rec PaymentRecord
	err := tx.QueryRow(ctx, `
		SELECT`+paymentColumns+`
		FROM payments
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY id
		LIMIT 1
	`, refType, refID).Scan(
		&rec.ID, &rec.ReferenceType, &rec.ReferenceID, &rec.Amount, &rec.PaymentType,
		&rec.PaymentMethod, &rec.PaidToFrom, &rec.PaymentDate, &rec.BillNumber,
		&rec.RecordedBy, &rec.Status, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment for %s %d: %w", refType, refID, err)
	}
	return &rec, nil
}

func (s *paymentService) GetPayments(ctx context.Context) ([]PaymentRecord, error) {
	return s.queryPayments(ctx, `SELECT`+paymentColumns+` FROM payments ORDER BY id DESC`)
}

func (s *paymentService) GetPaymentsForSale(ctx context.Context, saleID int) ([]PaymentRecord, error) {
	return s.queryPayments(ctx,
		`SELECT`+paymentColumns+` FROM payments WHERE reference_type = $1 AND reference_id = $2 ORDER BY id`,
		RefSale, saleID)
}

func (s *paymentService) queryPayments(ctx context.Context, query string, args ...any) ([]PaymentRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var records []PaymentRecord
	for rows.Next() {
		var rec PaymentRecord
		if err := rows.Scan(
			&rec.ID, &rec.ReferenceType, &rec.ReferenceID, &rec.Amount, &rec.PaymentType,
			&rec.PaymentMethod, &rec.PaidToFrom, &rec.PaymentDate, &rec.BillNumber,
			&rec.RecordedBy, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
