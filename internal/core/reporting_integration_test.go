package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"retail-pos/internal/core"

	"github.com/shopspring/decimal"
)

// memoryCache is an in-process ReportCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return v, ok
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.sets++
}

func TestReporting_SalesDashboard(t *testing.T) {
	pool, saleSvc, invSvc, paySvc, ctx := setupServices(t)

	// One settled cash sale today: 2 × 10.00 = 20.00.
	if _, err := saleSvc.Checkout(ctx, core.CheckoutRequest{
		CustomerID:    1,
		SoldBy:        1,
		PaymentMethod: core.MethodCash,
		Lines:         []core.CheckoutLine{{ProductID: 1, Quantity: 2}},
	}, invSvc, paySvc, nil); err != nil {
		t.Fatalf("Cash checkout failed: %v", err)
	}

	// One pending QR sale, which must not count as revenue.
	gw := &fakeGateway{acknowledged: true}
	if _, err := saleSvc.Checkout(ctx, core.CheckoutRequest{
		CustomerID:    1,
		SoldBy:        1,
		PaymentMethod: core.MethodQR,
		Lines:         []core.CheckoutLine{{ProductID: 2, Quantity: 1}},
	}, invSvc, paySvc, gw); err != nil {
		t.Fatalf("QR checkout failed: %v", err)
	}

	reporting := core.NewReportingService(pool, nil)
	d, err := reporting.GetSalesDashboard(ctx)
	if err != nil {
		t.Fatalf("GetSalesDashboard failed: %v", err)
	}

	if !d.TodayRevenue.Equal(decimal.NewFromFloat(20.00)) {
		t.Errorf("Expected today revenue 20.00 (pending sale excluded), got %s", d.TodayRevenue)
	}
	if d.TodaySalesCount != 2 {
		t.Errorf("Expected 2 sales created today, got %d", d.TodaySalesCount)
	}
	if d.PendingSalesCount != 1 {
		t.Errorf("Expected 1 pending sale, got %d", d.PendingSalesCount)
	}
	if !d.MonthRevenue.Equal(decimal.NewFromFloat(20.00)) {
		t.Errorf("Expected month revenue 20.00, got %s", d.MonthRevenue)
	}
}

func TestReporting_DashboardLowStock(t *testing.T) {
	pool, _, _, _, ctx := setupServices(t)

	// Scarce Item (id 3) sits at 1 with reorder level 0 — not low. Push it low.
	if _, err := pool.Exec(ctx, "UPDATE products SET stock_quantity = 0 WHERE id = 3"); err != nil {
		t.Fatalf("Failed to set stock: %v", err)
	}

	d, err := core.NewReportingService(pool, nil).GetSalesDashboard(ctx)
	if err != nil {
		t.Fatalf("GetSalesDashboard failed: %v", err)
	}
	if len(d.LowStockProducts) != 1 || d.LowStockProducts[0].ProductID != 3 {
		t.Errorf("Expected only product 3 in low stock list, got %+v", d.LowStockProducts)
	}
}

func TestReporting_DashboardUsesCache(t *testing.T) {
	pool, _, _, _, ctx := setupServices(t)

	mc := newMemoryCache()
	reporting := core.NewReportingService(pool, mc)

	first, err := reporting.GetSalesDashboard(ctx)
	if err != nil {
		t.Fatalf("First GetSalesDashboard failed: %v", err)
	}
	if mc.sets != 1 {
		t.Errorf("Expected one cache fill, got %d", mc.sets)
	}

	// Mutate underlying data; the cached dashboard must still be served.
	if _, err := pool.Exec(ctx, "UPDATE products SET stock_quantity = 0"); err != nil {
		t.Fatalf("Failed to mutate products: %v", err)
	}

	second, err := reporting.GetSalesDashboard(ctx)
	if err != nil {
		t.Fatalf("Second GetSalesDashboard failed: %v", err)
	}
	if mc.hits != 1 {
		t.Errorf("Expected a cache hit on the second read, got %d hits", mc.hits)
	}
	if len(second.LowStockProducts) != len(first.LowStockProducts) {
		t.Error("Expected the cached dashboard, not a fresh query")
	}
}

func TestReporting_SalesReport(t *testing.T) {
	pool, saleSvc, invSvc, paySvc, ctx := setupServices(t)

	if _, err := saleSvc.Checkout(ctx, core.CheckoutRequest{
		CustomerID:    1,
		SoldBy:        1,
		PaymentMethod: core.MethodCash,
		Lines:         []core.CheckoutLine{{ProductID: 1, Quantity: 1}},
	}, invSvc, paySvc, nil); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	rows, err := core.NewReportingService(pool, nil).GetSalesReport(ctx, today, today)
	if err != nil {
		t.Fatalf("GetSalesReport failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 report row, got %d", len(rows))
	}
	if rows[0].Date != today || rows[0].Sales != 1 || !rows[0].Revenue.Equal(decimal.NewFromFloat(10.00)) {
		t.Errorf("Unexpected report row: %+v", rows[0])
	}
}

func TestReporting_SalesReport_BadDates(t *testing.T) {
	pool, _, _, _, ctx := setupServices(t)

	_, err := core.NewReportingService(pool, nil).GetSalesReport(ctx, "01/02/2026", "2026-02-28")
	if err == nil {
		t.Fatal("Expected validation error for malformed date")
	}
}
