package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción que afectan el stock.
const (
	TransactionSale           = "sale"
	TransactionPurchase       = "purchase"
	TransactionCustomerReturn = "customer_return"
	TransactionSupplierReturn = "supplier_return"
	TransactionAdjustment     = "adjustment"
	TransactionDelete         = "delete"
)

// Tipos de contraparte.
const (
	PartyCustomer = "customer"
	PartySupplier = "supplier"
	PartySystem   = "system"
)

// Party identifica la contraparte de un movimiento.
type Party struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

// SystemParty contraparte usada en eventos del ciclo de vida del producto.
func SystemParty() *Party {
	return &Party{Name: "System", Type: PartySystem, ID: "system"}
}

// StockTransition es una entrada inmutable del libro de stock.
// ProductName y los valores de stock son copias al momento del movimiento, no referencias vivas.
type StockTransition struct {
	ID              string
	ProductID       string
	ProductName     string
	TransactionType string
	Quantity        int
	PreviousStock   int
	NewStock        int
	UnitPrice       decimal.Decimal
	TotalValue      decimal.Decimal
	Reference       string
	Party           *Party
	UserID          *string // solo si es un UUID válido
	UserName        string
	Notes           string
	CreatedAt       time.Time
}
