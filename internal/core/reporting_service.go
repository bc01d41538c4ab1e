package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// SalesDashboard is the at-a-glance view for the POS home screen.
type SalesDashboard struct {
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	TodaySalesCount   int             `json:"today_sales_count"`
	MonthRevenue      decimal.Decimal `json:"month_revenue"`
	PendingSalesCount int             `json:"pending_sales_count"`
	LowStockProducts  []StockLevel    `json:"low_stock_products"`
}

// SalesReportRow is one day of settled sales in a report period.
type SalesReportRow struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportCache is a keyed byte cache with per-entry TTL. A nil ReportCache is
// valid; every read then falls through to the database.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// ReportingService provides read-only aggregates over sales and stock.
// Results are cached briefly; a dashboard may be up to one cache TTL stale.
type ReportingService interface {
	GetSalesDashboard(ctx context.Context) (*SalesDashboard, error)

	// GetSalesReport returns per-day settled revenue for [fromDate, toDate],
	// both YYYY-MM-DD inclusive.
	GetSalesReport(ctx context.Context, fromDate, toDate string) ([]SalesReportRow, error)
}

const dashboardTTL = 5 * time.Minute

type reportingService struct {
	pool  *pgxpool.Pool
	cache ReportCache
}

// NewReportingService constructs a ReportingService. cache may be nil.
func NewReportingService(pool *pgxpool.Pool, cache ReportCache) ReportingService {
	return &reportingService{pool: pool, cache: cache}
}

// ── Implementation ────────────────────────────────────────────────────────────

func (s *reportingService) GetSalesDashboard(ctx context.Context) (*SalesDashboard, error) {
	const cacheKey = "report:sales_dashboard"

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, cacheKey); ok {
			var d SalesDashboard
			if err := json.Unmarshal(raw, &d); err == nil {
				return &d, nil
			}
			// A corrupt cache entry falls through to the query.
		}
	}

	d := &SalesDashboard{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid' AND paid_at::date = CURRENT_DATE), 0),
			COUNT(*) FILTER (WHERE created_at::date = CURRENT_DATE),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid' AND date_trunc('month', paid_at) = date_trunc('month', CURRENT_DATE)), 0),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM sales
	`).Scan(&d.TodayRevenue, &d.TodaySalesCount, &d.MonthRevenue, &d.PendingSalesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales dashboard: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, sku, stock_quantity, reorder_level
		FROM products
		WHERE stock_quantity <= reorder_level
		ORDER BY stock_quantity ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductID, &sl.ProductName, &sl.SKU, &sl.StockQuantity, &sl.ReorderLevel); err != nil {
			return nil, fmt.Errorf("failed to scan low stock row: %w", err)
		}
		sl.LowStock = true
		d.LowStockProducts = append(d.LowStockProducts, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(d); err == nil {
			s.cache.Set(ctx, cacheKey, raw, dashboardTTL)
		}
	}
	return d, nil
}

func (s *reportingService) GetSalesReport(ctx context.Context, fromDate, toDate string) ([]SalesReportRow, error) {
	for _, d := range []struct{ field, v string }{{"from_date", fromDate}, {"to_date", toDate}} {
		if _, err := time.Parse("2006-01-02", d.v); err != nil {
			return nil, &ValidationError{Field: d.field, Reason: "must be YYYY-MM-DD"}
		}
	}

	cacheKey := fmt.Sprintf("report:sales:%s:%s", fromDate, toDate)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, cacheKey); ok {
			var report []SalesReportRow
			if err := json.Unmarshal(raw, &report); err == nil {
				return report, nil
			}
		}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT paid_at::date::text, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE payment_status = 'paid' AND paid_at::date BETWEEN $1 AND $2
		GROUP BY paid_at::date
		ORDER BY paid_at::date
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales report: %w", err)
	}
	defer rows.Close()

	var report []SalesReportRow
	for rows.Next() {
		var r SalesReportRow
		if err := rows.Scan(&r.Date, &r.Sales, &r.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		report = append(report, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(report); err == nil {
			s.cache.Set(ctx, cacheKey, raw, dashboardTTL)
		}
	}
	return report, nil
}
