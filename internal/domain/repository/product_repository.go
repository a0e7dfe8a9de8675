package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductFilter filtros para el listado de productos.
type ProductFilter struct {
	Search   string // nombre, descripción, categoría, código de barras o ID
	Category string
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs lee varios productos en una sola consulta (snapshot de un lote); los ausentes no aparecen en el mapa.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// Update actualiza los campos de catálogo. Nunca toca el stock.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error

	// AddStock suma delta al stock en una sola sentencia condicional (stock + delta >= 0)
	// y devuelve el stock resultante. ErrInsufficientStock si la condición falla, ErrNotFound si no existe.
	AddStock(ctx context.Context, id string, delta int) (newStock int, err error)
	// SetStock fija el stock a value y devuelve el valor anterior leído en la misma operación.
	SetStock(ctx context.Context, id string, value int) (previous int, err error)
}
