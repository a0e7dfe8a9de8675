package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const (
	defaultMinStock = 5
	maxIDAttempts   = 10
)

var hundred = decimal.NewFromInt(100)

// ProductUseCase casos de uso del catálogo. El stock solo cambia vía el coordinador de inventario,
// así cada alta, edición de stock o baja deja su entrada en el libro.
type ProductUseCase struct {
	repo  repository.ProductRepository
	coord *inventory.Coordinator
	log   zerolog.Logger
	now   func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, coord *inventory.Coordinator, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, coord: coord, log: log, now: time.Now}
}

// Create crea el producto con stock 0 y registra el stock inicial como compra (PRODUCT_CREATED_<id>).
func (uc *ProductUseCase) Create(ctx context.Context, actor dto.ActorDTO, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePrices(in.CostPrice, in.SellingPrice, in.Discount); err != nil {
		return nil, err
	}

	barcode := strings.TrimSpace(in.Barcode)
	if barcode != "" {
		existing, err := uc.repo.GetByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	} else {
		generated, err := uc.uniqueBarcode(ctx)
		if err != nil {
			return nil, err
		}
		barcode = generated
	}
	id, err := uc.uniqueID(ctx)
	if err != nil {
		return nil, err
	}

	minStock := defaultMinStock
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	now := uc.now()
	product := &entity.Product{
		ID:           id,
		Name:         name,
		Description:  in.Description,
		Category:     category,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Stock:        0,
		MinStock:     minStock,
		Barcode:      barcode,
		Supplier:     in.Supplier,
		Discount:     in.Discount,
		Size:         in.Size,
		DryFood:      in.DryFood,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	if in.Stock > 0 {
		_, err := uc.coord.Apply(ctx, inventory.Intent{
			ProductID: id,
			Type:      entity.TransactionPurchase,
			Quantity:  in.Stock,
			UnitPrice: product.CostPrice,
			Reference: "PRODUCT_CREATED_" + id,
			Party:     entity.SystemParty(),
			Actor:     &inventory.Actor{ID: actor.ID, Name: actor.Name},
			Notes:     "Initial stock on product creation",
		})
		if err != nil {
			// Sin stock inicial el alta queda incompleta: se deshace.
			if delErr := uc.repo.Delete(ctx, id); delErr != nil {
				uc.log.Error().Err(delErr).Str("product_id", id).Msg("no se pudo deshacer el alta del producto")
			}
			return nil, fmt.Errorf("stock inicial: %w", err)
		}
	}
	return uc.GetByID(ctx, id)
}

// GetByID obtiene un producto. ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos; category "all" equivale a sin filtro.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) ([]dto.ProductResponse, error) {
	filter := repository.ProductFilter{Search: strings.TrimSpace(q.Search)}
	if c := strings.TrimSpace(q.Category); c != "" && c != "all" {
		filter.Category = c
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Update actualiza el catálogo. Si llega un stock distinto al actual: aumento → purchase de la diferencia,
// disminución → adjustment al nuevo valor (PRODUCT_UPDATED_<id>). El movimiento de stock se aplica antes
// de guardar el catálogo; si falla no se guarda nada.
func (uc *ProductUseCase) Update(ctx context.Context, actor dto.ActorDTO, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.CostPrice != nil {
		product.CostPrice = *in.CostPrice
	}
	if in.SellingPrice != nil {
		product.SellingPrice = *in.SellingPrice
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.Supplier != nil {
		product.Supplier = *in.Supplier
	}
	if in.Discount != nil {
		product.Discount = *in.Discount
	}
	if in.Size != nil {
		product.Size = *in.Size
	}
	if in.DryFood != nil {
		product.DryFood = *in.DryFood
	}
	if product.Name == "" || product.Category == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePrices(product.CostPrice, product.SellingPrice, product.Discount); err != nil {
		return nil, err
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Barcode != nil {
		barcode := strings.TrimSpace(*in.Barcode)
		switch {
		case barcode == "":
			if product.Barcode, err = uc.uniqueBarcode(ctx); err != nil {
				return nil, err
			}
		case barcode != product.Barcode:
			existing, err := uc.repo.GetByBarcode(ctx, barcode)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != product.ID {
				return nil, domain.ErrDuplicate
			}
			product.Barcode = barcode
		}
	}
	if in.Stock != nil && *in.Stock != product.Stock {
		prev, next := product.Stock, *in.Stock
		intent := inventory.Intent{
			ProductID: id,
			UnitPrice: product.CostPrice,
			Reference: "PRODUCT_UPDATED_" + id,
			Party:     entity.SystemParty(),
			Actor:     &inventory.Actor{ID: actor.ID, Name: actor.Name},
		}
		if next > prev {
			intent.Type = entity.TransactionPurchase
			intent.Quantity = next - prev
			intent.Notes = fmt.Sprintf("Stock increased from %d to %d via product update", prev, next)
		} else {
			intent.Type = entity.TransactionAdjustment
			intent.Quantity = next
			intent.Notes = fmt.Sprintf("Stock decreased from %d to %d via product update", prev, next)
		}
		if _, err := uc.coord.Apply(ctx, intent); err != nil {
			return nil, fmt.Errorf("actualizar stock: %w", err)
		}
	}

	// El stock va primero: si falla, el catálogo queda como estaba. Update conserva el stock almacenado.
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Delete da de baja el producto. Si queda stock, primero se registra un delete (PRODUCT_DELETED_<id>)
// que lo lleva a 0; las entradas del libro sobreviven al producto.
func (uc *ProductUseCase) Delete(ctx context.Context, actor dto.ActorDTO, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.Stock > 0 {
		_, err := uc.coord.Apply(ctx, inventory.Intent{
			ProductID: id,
			Type:      entity.TransactionDelete,
			UnitPrice: product.CostPrice,
			Reference: "PRODUCT_DELETED_" + id,
			Party:     entity.SystemParty(),
			Actor:     &inventory.Actor{ID: actor.ID, Name: actor.Name},
			Notes:     fmt.Sprintf("Product deleted with remaining stock: %d", product.Stock),
		})
		if err != nil {
			return fmt.Errorf("baja de stock: %w", err)
		}
	}
	return uc.repo.Delete(ctx, id)
}

func validatePrices(cost, selling, discount decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() {
		return domain.ErrInvalidInput
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return domain.ErrInvalidInput
	}
	return nil
}

// uniqueID código corto de 6 dígitos no usado.
func (uc *ProductUseCase) uniqueID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := strconv.Itoa(100000 + rand.IntN(900000))
		existing, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no se pudo generar un ID de producto libre", domain.ErrDuplicate)
}

// uniqueBarcode código de 13 dígitos: 7 del timestamp, 3 aleatorios y 000.
func (uc *ProductUseCase) uniqueBarcode(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		code := generateBarcode(uc.now())
		existing, err := uc.repo.GetByBarcode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: no se pudo generar un código de barras libre", domain.ErrDuplicate)
}

func generateBarcode(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ts) > 7 {
		ts = ts[len(ts)-7:]
	}
	return fmt.Sprintf("%s%03d000", ts, rand.IntN(1000))
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		LowStock:     p.LowStock(),
		Barcode:      p.Barcode,
		Supplier:     p.Supplier,
		Discount:     p.Discount,
		Size:         p.Size,
		DryFood:      p.DryFood,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
