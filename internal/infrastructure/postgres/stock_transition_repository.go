package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockTransitionRepository = (*StockTransitionRepo)(nil)

const transitionColumns = `id::text AS id, product_id, product_name, transaction_type, quantity, previous_stock, new_stock,
	unit_price, total_value, reference, party, user_id::text AS user_id, user_name, notes, created_at`

// StockTransitionRepo libro de stock sobre PostgreSQL. Solo inserción; el trigger de la tabla bloquea UPDATE/DELETE.
type StockTransitionRepo struct {
	q Querier
}

// NewStockTransitionRepository construye el repositorio del libro. Pasar pool o tx (Querier).
func NewStockTransitionRepository(q Querier) *StockTransitionRepo {
	return &StockTransitionRepo{q: q}
}

type transitionRow struct {
	ID              string          `db:"id"`
	ProductID       string          `db:"product_id"`
	ProductName     string          `db:"product_name"`
	TransactionType string          `db:"transaction_type"`
	Quantity        int             `db:"quantity"`
	PreviousStock   int             `db:"previous_stock"`
	NewStock        int             `db:"new_stock"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	TotalValue      decimal.Decimal `db:"total_value"`
	Reference       string          `db:"reference"`
	Party           []byte          `db:"party"`
	UserID          *string         `db:"user_id"`
	UserName        string          `db:"user_name"`
	Notes           string          `db:"notes"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (row transitionRow) toEntity() (*entity.StockTransition, error) {
	t := &entity.StockTransition{
		ID:              row.ID,
		ProductID:       row.ProductID,
		ProductName:     row.ProductName,
		TransactionType: row.TransactionType,
		Quantity:        row.Quantity,
		PreviousStock:   row.PreviousStock,
		NewStock:        row.NewStock,
		UnitPrice:       row.UnitPrice,
		TotalValue:      row.TotalValue,
		Reference:       row.Reference,
		UserID:          row.UserID,
		UserName:        row.UserName,
		Notes:           row.Notes,
		CreatedAt:       row.CreatedAt,
	}
	if len(row.Party) > 0 && string(row.Party) != "null" {
		var p entity.Party
		if err := json.Unmarshal(row.Party, &p); err != nil {
			return nil, fmt.Errorf("decode party: %w", err)
		}
		t.Party = &p
	}
	return t, nil
}

// Append inserta una entrada del libro.
func (r *StockTransitionRepo) Append(ctx context.Context, t *entity.StockTransition) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	var party []byte
	if t.Party != nil {
		b, err := json.Marshal(t.Party)
		if err != nil {
			return fmt.Errorf("encode party: %w", err)
		}
		party = b
	}
	query, args, err := psql.Insert("stock_transitions").
		Columns("id", "product_id", "product_name", "transaction_type", "quantity", "previous_stock", "new_stock",
			"unit_price", "total_value", "reference", "party", "user_id", "user_name", "notes", "created_at").
		Values(t.ID, t.ProductID, t.ProductName, t.TransactionType, t.Quantity, t.PreviousStock, t.NewStock,
			t.UnitPrice, t.TotalValue, t.Reference, party, t.UserID, t.UserName, t.Notes, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert stock transition: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert stock transition: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada del libro. (nil, nil) si no existe.
func (r *StockTransitionRepo) GetByID(ctx context.Context, id string) (*entity.StockTransition, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var rows []transitionRow
	if err := pgxscan.Select(ctx, r.q, &rows, `SELECT `+transitionColumns+` FROM stock_transitions WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("get stock transition: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toEntity()
}

// List devuelve la página pedida (más recientes primero) y el total que cumple el filtro.
func (r *StockTransitionRepo) List(ctx context.Context, f repository.StockTransitionFilter) ([]*entity.StockTransition, int, error) {
	countQ, listQ := buildTransitionQueries(f)

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count stock transitions: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transitions: %w", err)
	}

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list stock transitions: %w", err)
	}
	var rows []transitionRow
	if err := pgxscan.Select(ctx, r.q, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list stock transitions: %w", err)
	}
	out := make([]*entity.StockTransition, 0, len(rows))
	for _, row := range rows {
		t, err := row.toEntity()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, nil
}

// buildTransitionQueries arma la consulta de conteo y la de página con los mismos filtros (AND).
func buildTransitionQueries(f repository.StockTransitionFilter) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	where := squirrel.And{}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"product_id": f.ProductID})
	}
	if f.TransactionType != "" {
		where = append(where, squirrel.Eq{"transaction_type": f.TransactionType})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"created_at": *f.To})
	}

	countQ := psql.Select("COUNT(*)").From("stock_transitions")
	listQ := psql.Select(transitionColumns).From("stock_transitions").OrderBy("created_at DESC", "id DESC")
	if len(where) > 0 {
		countQ = countQ.Where(where)
		listQ = listQ.Where(where)
	}
	if f.Limit > 0 {
		listQ = listQ.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		listQ = listQ.Offset(uint64(f.Offset))
	}
	return countQ, listQ
}
