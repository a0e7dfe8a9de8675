package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CartLineRequest línea del carrito.
type CartLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CustomerRequest cliente de la orden.
type CustomerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Name               string            `json:"name" validate:"max=200"`
	OrderType          string            `json:"orderType" validate:"required,oneof=dine-in takeaway delivery"`
	Cart               []CartLineRequest `json:"cart" validate:"required,min=1,dive"`
	Customer           *CustomerRequest  `json:"customer,omitempty" validate:"omitempty"`
	KitchenNote        string            `json:"kitchenNote" validate:"max=500"`
	PaymentDetails     json.RawMessage   `json:"paymentDetails"`
	TableCharge        decimal.Decimal   `json:"tableCharge"`
	DeliveryCharge     decimal.Decimal   `json:"deliveryCharge"`
	DiscountPercentage decimal.Decimal   `json:"discountPercentage"`
}

// UpdateStockRequest body para POST /api/orders/update-stock (venta sin orden).
type UpdateStockRequest struct {
	CartItems []CartLineRequest `json:"cartItems" validate:"required,min=1,dive"`
}

// OrderLineResponse línea de la orden.
type OrderLineResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Fulfilled   bool            `json:"fulfilled"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	OrderType          string              `json:"orderType"`
	Customer           *CustomerRequest    `json:"customer,omitempty"`
	CashierID          string              `json:"cashierId"`
	CashierName        string              `json:"cashierName"`
	Cart               []OrderLineResponse `json:"cart"`
	KitchenNote        string              `json:"kitchenNote,omitempty"`
	Status             string              `json:"status"`
	PaymentDetails     json.RawMessage     `json:"paymentDetails,omitempty"`
	TableCharge        decimal.Decimal     `json:"tableCharge"`
	DeliveryCharge     decimal.Decimal     `json:"deliveryCharge"`
	DiscountPercentage decimal.Decimal     `json:"discountPercentage"`
	TotalAmount        decimal.Decimal     `json:"totalAmount"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// OrderResult orden creada (nil si ninguna línea se pudo atender) y el resultado del lote de stock.
type OrderResult struct {
	Order *OrderResponse `json:"order,omitempty"`
	Stock BatchDTO       `json:"stock"`
}
