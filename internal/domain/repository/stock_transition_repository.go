package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockTransitionFilter filtros del libro (semántica AND). From y To son opcionales e independientes.
type StockTransitionFilter struct {
	ProductID       string
	TransactionType string
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

// StockTransitionRepository puerto del libro de stock. Solo inserción: no existen Update ni Delete.
type StockTransitionRepository interface {
	Append(ctx context.Context, transition *entity.StockTransition) error
	GetByID(ctx context.Context, id string) (*entity.StockTransition, error)
	// List devuelve la página pedida, más recientes primero, y el total que cumple el filtro.
	List(ctx context.Context, filter StockTransitionFilter) ([]*entity.StockTransition, int, error)
}
