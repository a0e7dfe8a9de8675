package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockTransitionRequest body para POST /api/stock-transitions.
// Para adjustment, quantity es el stock objetivo.
type CreateStockTransitionRequest struct {
	ProductID       string           `json:"productId" validate:"required"`
	TransactionType string           `json:"transactionType" validate:"required"`
	Quantity        int              `json:"quantity" validate:"min=0"`
	UnitPrice       *decimal.Decimal `json:"unitPrice,omitempty"`
	Reference       string           `json:"reference" validate:"max=200"`
	Party           *PartyDTO        `json:"party,omitempty" validate:"omitempty"`
	Notes           string           `json:"notes" validate:"max=1000"`
}

// StockTransitionQuery filtros de GET /api/stock-transitions.
type StockTransitionQuery struct {
	Page            int    `query:"page"`
	Limit           int    `query:"limit"`
	ProductID       string `query:"productId"`
	TransactionType string `query:"transactionType"`
	StartDate       string `query:"startDate"`
	EndDate         string `query:"endDate"`
}

// StockTransitionResponse salida de una entrada del libro.
type StockTransitionResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	TransactionType string          `json:"transactionType"`
	Quantity        int             `json:"quantity"`
	PreviousStock   int             `json:"previousStock"`
	NewStock        int             `json:"newStock"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	Reference       string          `json:"reference,omitempty"`
	Party           *PartyDTO       `json:"party,omitempty"`
	User            *string         `json:"user,omitempty"`
	UserName        string          `json:"userName"`
	Notes           string          `json:"notes"`
	LedgerRecorded  bool            `json:"ledgerRecorded"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// PaginationDTO paginación por página del libro.
type PaginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// StockTransitionListResponse página del libro.
type StockTransitionListResponse struct {
	Transitions []StockTransitionResponse `json:"transitions"`
	Pagination  PaginationDTO             `json:"pagination"`
}
