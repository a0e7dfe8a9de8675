package inventory

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Solo se usa en modo de libro transaccional: escritura de stock y entrada del libro en la misma unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		products repository.ProductRepository,
		ledger repository.StockTransitionRepository,
	) error) error
}
