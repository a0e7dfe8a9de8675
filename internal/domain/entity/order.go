package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de orden.
const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

// Estados de orden.
const (
	OrderStatusActive    = "active"
	OrderStatusCompleted = "completed"
)

// OrderLine línea del carrito. UnitPrice es el precio de venta vigente al crear la orden.
type OrderLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Fulfilled   bool            `json:"fulfilled"`
}

// OrderCustomer cliente de la orden (opcional, "walk-in" si no tiene ID).
type OrderCustomer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// OrderCashier cajero que registró la orden.
type OrderCashier struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Order representa una venta del POS.
type Order struct {
	ID                 string
	Name               string
	OrderType          string
	Customer           *OrderCustomer
	Cashier            OrderCashier
	Cart               []OrderLine
	KitchenNote        string
	Status             string
	PaymentDetails     json.RawMessage
	TableCharge        decimal.Decimal
	DeliveryCharge     decimal.Decimal
	DiscountPercentage decimal.Decimal
	TotalAmount        decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
