package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockIn records one goods receipt (restock). Code is generated from the
// row's own id after insert (format STK-YYYY-NNNNNN).
type StockIn struct {
	ID           int             `json:"id"`
	SupplierID   int             `json:"supplier_id"`
	ProductID    int             `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Code         string          `json:"code"`
	ReceivedDate string          `json:"received_date"` // YYYY-MM-DD
	ReceivedBy   int             `json:"received_by"`
	Remarks      string          `json:"remarks"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReceiveStockRequest is the input to InventoryService.ReceiveStock.
type ReceiveStockRequest struct {
	SupplierID   int             `json:"supplier_id"`
	ProductID    int             `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ReceivedDate string          `json:"received_date"` // YYYY-MM-DD, empty = today
	ReceivedBy   int             `json:"received_by"`
	Remarks      string          `json:"remarks"`
}

// DeductStockRequest is the input to InventoryService.DeductStock, the manual
// stock-out path (damage, shrinkage, adjustments).
type DeductStockRequest struct {
	ProductID  int    `json:"product_id"`
	Quantity   int    `json:"quantity"`
	DeductedBy int    `json:"deducted_by"`
	Remarks    string `json:"remarks"`
}
