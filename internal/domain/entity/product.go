package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del POS. Stock es la fuente de verdad del inventario actual
// y solo cambia a través del coordinador de inventario.
type Product struct {
	ID           string // código corto de 6 dígitos
	Name         string
	Description  string
	Category     string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Stock        int
	MinStock     int
	Barcode      string
	Supplier     string
	Discount     decimal.Decimal
	Size         string
	DryFood      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LowStock indica si el producto está en o por debajo de su stock mínimo.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}
