package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

func TestProductRepo_AddStockCondicional(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "100001", Name: "Agua", Stock: 3}))

	next, err := s.Products().AddStock(ctx, "100001", -2)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	_, err = s.Products().AddStock(ctx, "100001", -2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = s.Products().AddStock(ctx, "999999", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	prev, err := s.Products().SetStock(ctx, "100001", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, prev)
}

func TestProductRepo_UpdateNoTocaStock(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "100001", Name: "Agua", Stock: 3}))

	require.NoError(t, s.Products().Update(ctx, &entity.Product{ID: "100001", Name: "Agua mineral", Stock: 99}))
	p, err := s.Products().GetByID(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, "Agua mineral", p.Name)
	assert.Equal(t, 3, p.Stock)
}

func TestStockTransitionRepo_ListFiltraYPagina(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, tt := range []string{entity.TransactionPurchase, entity.TransactionSale, entity.TransactionSale, entity.TransactionAdjustment} {
		require.NoError(t, s.Transitions().Append(ctx, &entity.StockTransition{
			ProductID:       "100001",
			TransactionType: tt,
			Quantity:        1,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, total, err := s.Transitions().List(ctx, repository.StockTransitionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, list, 2)
	assert.Equal(t, entity.TransactionAdjustment, list[0].TransactionType)

	_, total, err = s.Transitions().List(ctx, repository.StockTransitionFilter{TransactionType: entity.TransactionSale})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	from := base.Add(90 * time.Minute)
	to := base.Add(150 * time.Minute)
	list, total, err = s.Transitions().List(ctx, repository.StockTransitionFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, base.Add(2*time.Hour), list[0].CreatedAt)

	list, _, err = s.Transitions().List(ctx, repository.StockTransitionFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTxRunner_RestauraSiFalla(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "100001", Name: "Agua", Stock: 5}))

	boom := errors.New("boom")
	err := s.TxRunner().Run(ctx, func(p repository.ProductRepository, l repository.StockTransitionRepository) error {
		if _, err := p.AddStock(ctx, "100001", -3); err != nil {
			return err
		}
		if err := l.Append(ctx, &entity.StockTransition{ProductID: "100001", TransactionType: entity.TransactionSale}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	_, total, err := s.Transitions().List(ctx, repository.StockTransitionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTxRunner_FalloConservaEscriturasAjenas(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "100001", Name: "Agua", Stock: 5}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "100002", Name: "Jugo", Stock: 4}))

	boom := errors.New("boom")
	err := s.TxRunner().Run(ctx, func(p repository.ProductRepository, l repository.StockTransitionRepository) error {
		if _, err := p.AddStock(ctx, "100001", -3); err != nil {
			return err
		}
		if err := l.Append(ctx, &entity.StockTransition{ProductID: "100001", TransactionType: entity.TransactionSale}); err != nil {
			return err
		}
		// Escrituras concurrentes de otra petición, fuera de la unidad.
		require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "555555", Name: "Pan"}))
		require.NoError(t, s.Products().Update(ctx, &entity.Product{ID: "100002", Name: "Jugo de mora"}))
		require.NoError(t, s.Transitions().Append(ctx, &entity.StockTransition{ProductID: "100002", TransactionType: entity.TransactionPurchase}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	restored, err := s.Products().GetByID(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Stock)

	created, err := s.Products().GetByID(ctx, "555555")
	require.NoError(t, err)
	assert.NotNil(t, created)

	edited, err := s.Products().GetByID(ctx, "100002")
	require.NoError(t, err)
	assert.Equal(t, "Jugo de mora", edited.Name)

	list, total, err := s.Transitions().List(ctx, repository.StockTransitionFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "100002", list[0].ProductID)
}

func TestTxRunner_FalloBorraProductoCreadoEnLaUnidad(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.TxRunner().Run(ctx, func(p repository.ProductRepository, _ repository.StockTransitionRepository) error {
		if err := p.Create(ctx, &entity.Product{ID: "100009", Name: "Sal"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "100009")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewSeeded_CreaUsuarios(t *testing.T) {
	s, err := NewSeeded(zerolog.Nop())
	require.NoError(t, err)
	u, err := s.Users().GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, entity.RoleAdmin, u.Role)
}
