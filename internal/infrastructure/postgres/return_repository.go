package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `id::text AS id, product_id, product_name, return_type, quantity, reason, notes, unit_price, total_value,
	previous_stock, new_stock, cashier_id, cashier_name, status, failure_reason, created_at, updated_at`

// ReturnRepo devoluciones sobre PostgreSQL.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el repositorio de devoluciones.
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste la devolución (normalmente en estado pending).
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	query := `
		INSERT INTO returns (id, product_id, product_name, return_type, quantity, reason, notes, unit_price, total_value,
			previous_stock, new_stock, cashier_id, cashier_name, status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.ProductID, ret.ProductName, ret.ReturnType, ret.Quantity, ret.Reason, ret.Notes, ret.UnitPrice,
		ret.TotalValue, ret.PreviousStock, ret.NewStock, ret.CashierID, ret.CashierName, ret.Status,
		ret.FailureReason, ret.CreatedAt, ret.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// UpdateOutcome guarda el estado final y los valores de stock aplicados.
func (r *ReturnRepo) UpdateOutcome(ctx context.Context, ret *entity.Return) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE returns SET status = $2, previous_stock = $3, new_stock = $4, failure_reason = $5, updated_at = $6
		WHERE id = $1`,
		ret.ID, ret.Status, ret.PreviousStock, ret.NewStock, ret.FailureReason, ret.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una devolución. (nil, nil) si no existe.
func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.Return, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var list []*entity.Return
	if err := pgxscan.Select(ctx, r.q, &list, `SELECT `+returnColumns+` FROM returns WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get return: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// List devuelve las devoluciones más recientes primero.
func (r *ReturnRepo) List(ctx context.Context, limit, offset int) ([]*entity.Return, error) {
	query, args, err := psql.Select(returnColumns).From("returns").
		OrderBy("created_at DESC").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list returns: %w", err)
	}
	var list []*entity.Return
	if err := pgxscan.Select(ctx, r.q, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return list, nil
}
