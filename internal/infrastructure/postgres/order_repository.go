package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id::text AS id, name, order_type, customer, cashier_id, cashier_name, cart, kitchen_note, status,
	payment_details, table_charge, delivery_charge, discount_percentage, total_amount, created_at, updated_at`

// OrderRepo órdenes sobre PostgreSQL; cliente, carrito y detalle de pago como JSONB.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el repositorio de órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

type orderRow struct {
	ID                 string          `db:"id"`
	Name               string          `db:"name"`
	OrderType          string          `db:"order_type"`
	Customer           []byte          `db:"customer"`
	CashierID          string          `db:"cashier_id"`
	CashierName        string          `db:"cashier_name"`
	Cart               []byte          `db:"cart"`
	KitchenNote        string          `db:"kitchen_note"`
	Status             string          `db:"status"`
	PaymentDetails     []byte          `db:"payment_details"`
	TableCharge        decimal.Decimal `db:"table_charge"`
	DeliveryCharge     decimal.Decimal `db:"delivery_charge"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage"`
	TotalAmount        decimal.Decimal `db:"total_amount"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (row orderRow) toEntity() (*entity.Order, error) {
	o := &entity.Order{
		ID:                 row.ID,
		Name:               row.Name,
		OrderType:          row.OrderType,
		Cashier:            entity.OrderCashier{ID: row.CashierID, Username: row.CashierName},
		KitchenNote:        row.KitchenNote,
		Status:             row.Status,
		TableCharge:        row.TableCharge,
		DeliveryCharge:     row.DeliveryCharge,
		DiscountPercentage: row.DiscountPercentage,
		TotalAmount:        row.TotalAmount,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if len(row.PaymentDetails) > 0 {
		o.PaymentDetails = json.RawMessage(row.PaymentDetails)
	}
	if len(row.Customer) > 0 && string(row.Customer) != "null" {
		var c entity.OrderCustomer
		if err := json.Unmarshal(row.Customer, &c); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		o.Customer = &c
	}
	if err := json.Unmarshal(row.Cart, &o.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return o, nil
}

// Create persiste la orden.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	cart, err := json.Marshal(o.Cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	var customer []byte
	if o.Customer != nil {
		if customer, err = json.Marshal(o.Customer); err != nil {
			return fmt.Errorf("encode customer: %w", err)
		}
	}
	var payment []byte
	if len(o.PaymentDetails) > 0 {
		payment = o.PaymentDetails
	}
	query := `
		INSERT INTO orders (id, name, order_type, customer, cashier_id, cashier_name, cart, kitchen_note, status,
			payment_details, table_charge, delivery_charge, discount_percentage, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.Name, o.OrderType, customer, o.Cashier.ID, o.Cashier.Username, cart, o.KitchenNote, o.Status,
		payment, o.TableCharge, o.DeliveryCharge, o.DiscountPercentage, o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var rows []orderRow
	if err := pgxscan.Select(ctx, r.q, &rows, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toEntity()
}

// List devuelve las órdenes más recientes primero.
func (r *OrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	query, args, err := psql.Select(orderColumns).From("orders").
		OrderBy("created_at DESC").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders: %w", err)
	}
	var rows []orderRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]*entity.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Delete elimina la orden. ErrNotFound si no existe.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
