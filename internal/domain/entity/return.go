package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de devolución.
const (
	ReturnTypeCustomer = "customer"
	ReturnTypeSupplier = "supplier"
)

// Estados de devolución.
const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusRejected = "rejected"
)

// Return representa una devolución de cliente (entra stock) o a proveedor (sale stock).
type Return struct {
	ID            string
	ProductID     string
	ProductName   string
	ReturnType    string
	Quantity      int
	Reason        string
	Notes         string
	UnitPrice     decimal.Decimal
	TotalValue    decimal.Decimal
	PreviousStock int
	NewStock      int
	CashierID     string
	CashierName   string
	Status        string
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
