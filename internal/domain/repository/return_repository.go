package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.Return) error
	// UpdateOutcome guarda el estado final (approved/rejected) con los valores de stock aplicados.
	UpdateOutcome(ctx context.Context, ret *entity.Return) error
	GetByID(ctx context.Context, id string) (*entity.Return, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Return, error)
}
