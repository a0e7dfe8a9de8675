package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	policy "github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
	// maxLedgerPage mantiene (page-1)*limit dentro de int32 con el límite máximo.
	maxLedgerPage = math.MaxInt32 / maxLedgerLimit
)

// LedgerUseCase expone el libro de stock: movimientos manuales y consulta paginada.
type LedgerUseCase struct {
	coord  *Coordinator
	ledger repository.StockTransitionRepository
}

// NewLedgerUseCase construye el caso de uso del libro.
func NewLedgerUseCase(coord *Coordinator, ledger repository.StockTransitionRepository) *LedgerUseCase {
	return &LedgerUseCase{coord: coord, ledger: ledger}
}

// Create registra un movimiento manual. Para adjustment, Quantity es el stock objetivo.
// delete queda reservado a la baja de productos.
func (uc *LedgerUseCase) Create(ctx context.Context, actor dto.ActorDTO, in dto.CreateStockTransitionRequest) (*dto.StockTransitionResponse, error) {
	if in.TransactionType == entity.TransactionDelete {
		return nil, domain.ErrInvalidTransactionType
	}
	unitPrice := decimal.Zero
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}
	intent := Intent{
		ProductID: in.ProductID,
		Type:      in.TransactionType,
		Quantity:  in.Quantity,
		UnitPrice: unitPrice,
		Reference: in.Reference,
		Actor:     &Actor{ID: actor.ID, Name: actor.Name},
		Notes:     in.Notes,
	}
	if in.Party != nil {
		intent.Party = &entity.Party{Name: in.Party.Name, Type: in.Party.Type, ID: in.Party.ID}
	}
	res, err := uc.coord.Apply(ctx, intent)
	if err != nil {
		return nil, err
	}
	out := ToTransitionResponse(res)
	return &out, nil
}

// List devuelve una página del libro, más recientes primero.
// transactionType "all" equivale a sin filtro; startDate/endDate aceptan RFC3339 o YYYY-MM-DD
// (una fecha sin hora en endDate incluye el día completo).
func (uc *LedgerUseCase) List(ctx context.Context, q dto.StockTransitionQuery) (*dto.StockTransitionListResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > maxLedgerPage {
		page = maxLedgerPage
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}

	filter := repository.StockTransitionFilter{
		ProductID: strings.TrimSpace(q.ProductID),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if t := strings.TrimSpace(q.TransactionType); t != "" && t != "all" {
		if !policy.ValidTransactionType(t) {
			return nil, domain.ErrInvalidTransactionType
		}
		filter.TransactionType = t
	}
	if q.StartDate != "" {
		from, _, err := parseDate(q.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: startDate", domain.ErrInvalidInput)
		}
		filter.From = &from
	}
	if q.EndDate != "" {
		to, dateOnly, err := parseDate(q.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: endDate", domain.ErrInvalidInput)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}

	list, total, err := uc.ledger.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.StockTransitionListResponse{
		Transitions: make([]dto.StockTransitionResponse, 0, len(list)),
		Pagination: dto.PaginationDTO{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}
	for _, tr := range list {
		out.Transitions = append(out.Transitions, TransitionToDTO(tr, true))
	}
	return out, nil
}

func parseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// ToTransitionResponse convierte un resultado del coordinador al DTO.
func ToTransitionResponse(res *Result) dto.StockTransitionResponse {
	return TransitionToDTO(res.Transition, res.LedgerRecorded)
}

// TransitionToDTO convierte una entrada del libro al DTO.
func TransitionToDTO(tr *entity.StockTransition, recorded bool) dto.StockTransitionResponse {
	out := dto.StockTransitionResponse{
		ID:              tr.ID,
		ProductID:       tr.ProductID,
		ProductName:     tr.ProductName,
		TransactionType: tr.TransactionType,
		Quantity:        tr.Quantity,
		PreviousStock:   tr.PreviousStock,
		NewStock:        tr.NewStock,
		UnitPrice:       tr.UnitPrice,
		TotalValue:      tr.TotalValue,
		Reference:       tr.Reference,
		User:            tr.UserID,
		UserName:        tr.UserName,
		Notes:           tr.Notes,
		LedgerRecorded:  recorded,
		CreatedAt:       tr.CreatedAt,
	}
	if tr.Party != nil {
		out.Party = &dto.PartyDTO{Name: tr.Party.Name, Type: tr.Party.Type, ID: tr.Party.ID}
	}
	return out
}

// ToBatchDTO convierte el resultado de un lote al DTO.
func ToBatchDTO(b *BatchResult) dto.BatchDTO {
	out := dto.BatchDTO{
		Status:    b.Status,
		Succeeded: make([]dto.StockTransitionResponse, 0, len(b.Succeeded)),
		Failed:    make([]dto.LineErrorDTO, 0, len(b.Failed)),
	}
	for i := range b.Succeeded {
		out.Succeeded = append(out.Succeeded, ToTransitionResponse(&b.Succeeded[i]))
	}
	for _, f := range b.Failed {
		out.Failed = append(out.Failed, dto.LineErrorDTO{
			ProductID: f.ProductID,
			Code:      ErrorCode(f.Err),
			Reason:    f.Err.Error(),
		})
	}
	return out
}

// ErrorCode código estable para un error de dominio.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return "INVALID_TRANSACTION_TYPE"
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrLedgerWriteFailed):
		return "LEDGER_WRITE_FAILED"
	default:
		return "INTERNAL"
	}
}
