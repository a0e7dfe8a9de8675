package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	ProductID  string `json:"productId" validate:"required"`
	ReturnType string `json:"returnType" validate:"required,oneof=customer supplier"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
	Reason     string `json:"reason" validate:"required,max=500"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// ReturnResponse salida de una devolución.
type ReturnResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	ReturnType    string          `json:"returnType"`
	Quantity      int             `json:"quantity"`
	Reason        string          `json:"reason"`
	Notes         string          `json:"notes,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	PreviousStock int             `json:"previousStock"`
	NewStock      int             `json:"newStock"`
	CashierID     string          `json:"cashierId"`
	CashierName   string          `json:"cashierName"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}
