package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const walkIn = "walk-in"

// OrderUseCase ventas del POS: guarda la orden y descuenta el stock de cada línea como un lote.
type OrderUseCase struct {
	orders repository.OrderRepository
	coord  *inventory.Coordinator
	log    zerolog.Logger
	now    func() time.Time
}

// NewOrderUseCase construye el caso de uso de órdenes.
func NewOrderUseCase(orders repository.OrderRepository, coord *inventory.Coordinator, log zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, coord: coord, log: log, now: time.Now}
}

// Create toma un snapshot del stock del carrito, descarta las líneas que no se pueden atender y,
// si queda alguna, guarda la orden y aplica una venta por línea. Si ninguna línea es atendible, o si
// todas fallan al escribir el stock, la orden no queda guardada y el lote vuelve con estado failed.
func (uc *OrderUseCase) Create(ctx context.Context, actor dto.ActorDTO, in dto.CreateOrderRequest) (*dto.OrderResult, error) {
	if len(in.Cart) == 0 {
		return nil, domain.ErrInvalidInput
	}
	switch in.OrderType {
	case entity.OrderTypeDineIn, entity.OrderTypeTakeaway, entity.OrderTypeDelivery:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(hundred) ||
		in.TableCharge.IsNegative() || in.DeliveryCharge.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	ids := make([]string, 0, len(in.Cart))
	for _, line := range in.Cart {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		ids = append(ids, line.ProductID)
	}

	snap, err := uc.coord.TakeSnapshot(ctx, ids)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	party := orderParty(in.Customer)
	notes := "Order " + in.OrderType
	if k := strings.TrimSpace(in.KitchenNote); k != "" {
		notes += " - " + k
	}

	rejected := &inventory.BatchResult{}
	intents := make([]inventory.Intent, 0, len(in.Cart))
	cart := make([]entity.OrderLine, 0, len(in.Cart))
	for _, line := range in.Cart {
		intent := inventory.Intent{
			ProductID: line.ProductID,
			Type:      entity.TransactionSale,
			Quantity:  line.Quantity,
			Reference: orderID,
			Party:     party,
			Actor:     &inventory.Actor{ID: actor.ID, Name: actor.Name},
			Notes:     notes,
		}
		product, ok := snap.Product(line.ProductID)
		if ok {
			intent.UnitPrice = product.SellingPrice
		}
		if err := snap.Check(intent); err != nil {
			rejected.Fail(line.ProductID, err)
			continue
		}
		intents = append(intents, intent)
		cart = append(cart, entity.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.SellingPrice,
			Fulfilled:   true,
		})
	}

	if len(intents) == 0 {
		rejected.Status = inventory.BatchFailed
		return &dto.OrderResult{Stock: inventory.ToBatchDTO(rejected)}, nil
	}

	now := uc.now()
	order := &entity.Order{
		ID:                 orderID,
		Name:               strings.TrimSpace(in.Name),
		OrderType:          in.OrderType,
		Cashier:            entity.OrderCashier{ID: actor.ID, Username: actor.Name},
		Cart:               cart,
		KitchenNote:        strings.TrimSpace(in.KitchenNote),
		Status:             entity.OrderStatusActive,
		PaymentDetails:     in.PaymentDetails,
		TableCharge:        in.TableCharge,
		DeliveryCharge:     in.DeliveryCharge,
		DiscountPercentage: in.DiscountPercentage,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.Customer != nil {
		order.Customer = &entity.OrderCustomer{ID: in.Customer.ID, Name: in.Customer.Name}
	}
	order.TotalAmount = orderTotal(order)
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	batch := uc.coord.ApplyBatchOn(ctx, snap, intents)
	// Las líneas descartadas en el chequeo previo cuentan como fallos del lote.
	batch.Failed = append(rejected.Failed, batch.Failed...)
	batch.Status = batchStatus(batch)
	if batch.Status == inventory.BatchFailed {
		// Ninguna línea descontó stock: la orden no queda registrada.
		if err := uc.orders.Delete(ctx, orderID); err != nil {
			return nil, fmt.Errorf("descartar orden sin stock aplicado: %w", err)
		}
		uc.log.Warn().Str("order_id", orderID).Int("failed_lines", len(batch.Failed)).
			Msg("orden descartada: ninguna línea descontó stock")
		return &dto.OrderResult{Stock: inventory.ToBatchDTO(batch)}, nil
	}
	if len(batch.Failed) > len(rejected.Failed) {
		uc.log.Warn().Str("order_id", orderID).Int("failed_lines", len(batch.Failed)).
			Msg("orden guardada con líneas sin descontar stock")
	}

	resp := toOrderResponse(order)
	markUnfulfilled(resp, batch, len(rejected.Failed))
	return &dto.OrderResult{Order: resp, Stock: inventory.ToBatchDTO(batch)}, nil
}

// UpdateStock descuenta stock de un carrito sin crear orden. Cada línea se resuelve por separado.
func (uc *OrderUseCase) UpdateStock(ctx context.Context, actor dto.ActorDTO, in dto.UpdateStockRequest) (*dto.BatchDTO, error) {
	if len(in.CartItems) == 0 {
		return nil, domain.ErrInvalidInput
	}
	ids := make([]string, 0, len(in.CartItems))
	for _, line := range in.CartItems {
		ids = append(ids, line.ProductID)
	}
	snap, err := uc.coord.TakeSnapshot(ctx, ids)
	if err != nil {
		return nil, err
	}
	reference := "STOCK_UPDATE_" + uuid.New().String()
	intents := make([]inventory.Intent, 0, len(in.CartItems))
	for _, line := range in.CartItems {
		intent := inventory.Intent{
			ProductID: line.ProductID,
			Type:      entity.TransactionSale,
			Quantity:  line.Quantity,
			Reference: reference,
			Party:     &entity.Party{Name: walkIn, Type: entity.PartyCustomer, ID: walkIn},
			Actor:     &inventory.Actor{ID: actor.ID, Name: actor.Name},
			Notes:     "POS stock update",
		}
		if p, ok := snap.Product(line.ProductID); ok {
			intent.UnitPrice = p.SellingPrice
		}
		intents = append(intents, intent)
	}
	out := inventory.ToBatchDTO(uc.coord.ApplyBatchOn(ctx, snap, intents))
	return &out, nil
}

// GetByID obtiene una orden. ErrNotFound si no existe.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(order), nil
}

// List lista órdenes, más recientes primero.
func (uc *OrderUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.OrderResponse, error) {
	page.DefaultPage()
	list, err := uc.orders.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *toOrderResponse(o))
	}
	return out, nil
}

func orderParty(c *dto.CustomerRequest) *entity.Party {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return &entity.Party{Name: walkIn, Type: entity.PartyCustomer, ID: walkIn}
	}
	id := c.ID
	if id == "" {
		id = walkIn
	}
	return &entity.Party{Name: c.Name, Type: entity.PartyCustomer, ID: id}
}

// orderTotal subtotal de las líneas con el descuento porcentual, más cargos de mesa y envío.
func orderTotal(o *entity.Order) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range o.Cart {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	discount := subtotal.Mul(o.DiscountPercentage).Div(hundred)
	return subtotal.Sub(discount).Add(o.TableCharge).Add(o.DeliveryCharge).Round(2)
}

func batchStatus(b *inventory.BatchResult) string {
	switch {
	case len(b.Failed) == 0:
		return inventory.BatchSuccess
	case len(b.Succeeded) == 0:
		return inventory.BatchFailed
	default:
		return inventory.BatchPartial
	}
}

// markUnfulfilled marca en la respuesta las líneas que fallaron al aplicar el lote (no las del chequeo previo,
// que ya no forman parte del carrito).
func markUnfulfilled(resp *dto.OrderResponse, b *inventory.BatchResult, precheckFailures int) {
	pending := make(map[string]int)
	for _, f := range b.Failed[precheckFailures:] {
		pending[f.ProductID]++
	}
	for i := len(resp.Cart) - 1; i >= 0; i-- {
		if pending[resp.Cart[i].ProductID] > 0 {
			resp.Cart[i].Fulfilled = false
			pending[resp.Cart[i].ProductID]--
		}
	}
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:                 o.ID,
		Name:               o.Name,
		OrderType:          o.OrderType,
		CashierID:          o.Cashier.ID,
		CashierName:        o.Cashier.Username,
		Cart:               make([]dto.OrderLineResponse, 0, len(o.Cart)),
		KitchenNote:        o.KitchenNote,
		Status:             o.Status,
		PaymentDetails:     o.PaymentDetails,
		TableCharge:        o.TableCharge,
		DeliveryCharge:     o.DeliveryCharge,
		DiscountPercentage: o.DiscountPercentage,
		TotalAmount:        o.TotalAmount,
		CreatedAt:          o.CreatedAt,
	}
	if o.Customer != nil {
		out.Customer = &dto.CustomerRequest{ID: o.Customer.ID, Name: o.Customer.Name}
	}
	for _, l := range o.Cart {
		out.Cart = append(out.Cart, dto.OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Fulfilled:   l.Fulfilled,
		})
	}
	return out
}
