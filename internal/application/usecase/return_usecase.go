package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ReturnUseCase devoluciones: customer suma stock (customer_return), supplier lo resta (supplier_return).
type ReturnUseCase struct {
	returns  repository.ReturnRepository
	products repository.ProductRepository
	coord    *inventory.Coordinator
	now      func() time.Time
}

// NewReturnUseCase construye el caso de uso de devoluciones.
func NewReturnUseCase(returns repository.ReturnRepository, products repository.ProductRepository, coord *inventory.Coordinator) *ReturnUseCase {
	return &ReturnUseCase{returns: returns, products: products, coord: coord, now: time.Now}
}

// Process guarda la devolución en pending, aplica el movimiento con referencia = ID de la devolución
// y la marca approved o rejected según el resultado.
func (uc *ReturnUseCase) Process(ctx context.Context, actor dto.ActorDTO, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	var txType, partyName, partyType string
	switch in.ReturnType {
	case entity.ReturnTypeCustomer:
		txType, partyName, partyType = entity.TransactionCustomerReturn, "Customer Return", entity.PartyCustomer
	case entity.ReturnTypeSupplier:
		txType, partyName, partyType = entity.TransactionSupplierReturn, "Supplier Return", entity.PartySupplier
	default:
		return nil, domain.ErrInvalidInput
	}
	reason := strings.TrimSpace(in.Reason)
	if in.ProductID == "" || in.Quantity <= 0 || reason == "" {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	ret := &entity.Return{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		ReturnType:    in.ReturnType,
		Quantity:      in.Quantity,
		Reason:        reason,
		Notes:         in.Notes,
		UnitPrice:     product.SellingPrice,
		TotalValue:    product.SellingPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		PreviousStock: product.Stock,
		NewStock:      product.Stock,
		CashierID:     actor.ID,
		CashierName:   actor.Name,
		Status:        entity.ReturnStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.returns.Create(ctx, ret); err != nil {
		return nil, err
	}

	notes := reason
	if n := strings.TrimSpace(in.Notes); n != "" {
		notes += " - " + n
	}
	res, applyErr := uc.coord.Apply(ctx, inventory.Intent{
		ProductID: product.ID,
		Type:      txType,
		Quantity:  in.Quantity,
		UnitPrice: product.SellingPrice,
		Reference: ret.ID,
		Party:     &entity.Party{Name: partyName, Type: partyType, ID: ret.ID},
		Actor:     &inventory.Actor{ID: actor.ID, Name: actor.Name},
		Notes:     notes,
	})
	ret.UpdatedAt = uc.now()
	if applyErr != nil {
		ret.Status = entity.ReturnStatusRejected
		ret.FailureReason = applyErr.Error()
	} else {
		ret.Status = entity.ReturnStatusApproved
		ret.PreviousStock = res.PreviousStock
		ret.NewStock = res.NewStock
	}
	if err := uc.returns.UpdateOutcome(ctx, ret); err != nil {
		return nil, err
	}
	if applyErr != nil {
		return nil, applyErr
	}
	return toReturnResponse(ret), nil
}

// List lista devoluciones, más recientes primero.
func (uc *ReturnUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.ReturnResponse, error) {
	page.DefaultPage()
	list, err := uc.returns.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toReturnResponse(r))
	}
	return out, nil
}

func toReturnResponse(r *entity.Return) *dto.ReturnResponse {
	return &dto.ReturnResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		ReturnType:    r.ReturnType,
		Quantity:      r.Quantity,
		Reason:        r.Reason,
		Notes:         r.Notes,
		UnitPrice:     r.UnitPrice,
		TotalValue:    r.TotalValue,
		PreviousStock: r.PreviousStock,
		NewStock:      r.NewStock,
		CashierID:     r.CashierID,
		CashierName:   r.CashierName,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}
