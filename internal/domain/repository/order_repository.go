package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	// Delete elimina una orden que no llegó a descontar stock. ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
