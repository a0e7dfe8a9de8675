package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock es el stock inicial.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description" validate:"max=1000"`
	Category     string          `json:"category" validate:"required,max=100"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int             `json:"stock" validate:"min=0"`
	MinStock     *int            `json:"minStock" validate:"omitempty,min=0"`
	Barcode      string          `json:"barcode" validate:"omitempty,max=64"`
	Supplier     string          `json:"supplier"`
	Discount     decimal.Decimal `json:"discount"`
	Size         string          `json:"size"`
	DryFood      bool            `json:"dryfood"`
}

// UpdateProductRequest entrada para actualizar un producto. Si Stock viene y cambia, se registra en el libro.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category" validate:"omitempty,min=1,max=100"`
	CostPrice    *decimal.Decimal `json:"costPrice"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	Stock        *int             `json:"stock" validate:"omitempty,min=0"`
	MinStock     *int             `json:"minStock" validate:"omitempty,min=0"`
	Barcode      *string          `json:"barcode"`
	Supplier     *string          `json:"supplier"`
	Discount     *decimal.Decimal `json:"discount"`
	Size         *string          `json:"size"`
	DryFood      *bool            `json:"dryfood"`
}

// ProductQuery filtros del listado.
type ProductQuery struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int             `json:"stock"`
	MinStock     int             `json:"minStock"`
	LowStock     bool            `json:"lowStock"`
	Barcode      string          `json:"barcode,omitempty"`
	Supplier     string          `json:"supplier,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	Size         string          `json:"size,omitempty"`
	DryFood      bool            `json:"dryfood"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
