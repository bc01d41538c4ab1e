package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. StockQuantity is the committed on-hand
// count and never goes negative; it is mutated only through the guarded
// operations on InventoryService.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsLowStock reports whether the product has fallen to or below its reorder level.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.ReorderLevel
}

// Customer is a sales customer master record.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// StockLevel is a read-model row for the stock overview screen.
type StockLevel struct {
	ProductID     int    `json:"product_id"`
	ProductName   string `json:"product_name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
	ReorderLevel  int    `json:"reorder_level"`
	LowStock      bool   `json:"low_stock"`
}
