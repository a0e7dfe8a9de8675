package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

var cashier = dto.ActorDTO{ID: "3f1c2b9e-8d4a-4f6e-9b7a-1c2d3e4f5a6b", Name: "caja1"}

type fixture struct {
	store    *memory.Store
	products *usecase.ProductUseCase
	orders   *usecase.OrderUseCase
	returns  *usecase.ReturnUseCase
}

func newFixture() *fixture {
	store := memory.New()
	coord := inventory.NewCoordinator(store.TxRunner(), store.Products(), store.Transitions(), inventory.Options{}, zerolog.Nop())
	return &fixture{
		store:    store,
		products: usecase.NewProductUseCase(store.Products(), coord, zerolog.Nop()),
		orders:   usecase.NewOrderUseCase(store.Orders(), coord, zerolog.Nop()),
		returns:  usecase.NewReturnUseCase(store.Returns(), store.Products(), coord),
	}
}

func (f *fixture) createProduct(t *testing.T, name string, stock int) *dto.ProductResponse {
	t.Helper()
	p, err := f.products.Create(context.Background(), cashier, dto.CreateProductRequest{
		Name:         name,
		Category:     "bebidas",
		CostPrice:    decimal.NewFromInt(2),
		SellingPrice: decimal.NewFromInt(5),
		Stock:        stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) ledger(t *testing.T, productID string) []*entity.StockTransition {
	t.Helper()
	list, _, err := f.store.Transitions().List(context.Background(), repository.StockTransitionFilter{ProductID: productID})
	require.NoError(t, err)
	return list
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestProductCreate_StockInicialComoCompra(t *testing.T) {
	f := newFixture()
	p := f.createProduct(t, "Agua 600ml", 12)

	assert.Len(t, p.ID, 6)
	assert.Len(t, p.Barcode, 13)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, 5, p.MinStock)

	rows := f.ledger(t, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.TransactionPurchase, rows[0].TransactionType)
	assert.Equal(t, 0, rows[0].PreviousStock)
	assert.Equal(t, 12, rows[0].NewStock)
	assert.Equal(t, 12, rows[0].Quantity)
	assert.Equal(t, "PRODUCT_CREATED_"+p.ID, rows[0].Reference)
	require.NotNil(t, rows[0].Party)
	assert.Equal(t, entity.PartySystem, rows[0].Party.Type)
	assert.True(t, rows[0].TotalValue.Equal(decimal.NewFromInt(24)))
}

func TestProductCreate_SinStockNoRegistra(t *testing.T) {
	f := newFixture()
	p := f.createProduct(t, "Agua 600ml", 0)
	assert.Empty(t, f.ledger(t, p.ID))
}

func TestProductCreate_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.products.Create(ctx, cashier, dto.CreateProductRequest{Name: " ", Category: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.products.Create(ctx, cashier, dto.CreateProductRequest{Name: "a", Category: "x", CostPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.products.Create(ctx, cashier, dto.CreateProductRequest{Name: "a", Category: "x", Barcode: "7701234567890"})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, cashier, dto.CreateProductRequest{Name: "b", Category: "x", Barcode: "7701234567890"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUpdate_AumentoEsCompraYDisminucionEsAjuste(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.createProduct(t, "Café", 10)

	up := 15
	got, err := f.products.Update(ctx, cashier, p.ID, dto.UpdateProductRequest{Stock: &up})
	require.NoError(t, err)
	assert.Equal(t, 15, got.Stock)

	down := 4
	got, err = f.products.Update(ctx, cashier, p.ID, dto.UpdateProductRequest{Stock: &down})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	rows := f.ledger(t, p.ID)
	require.Len(t, rows, 3)
	// Más recientes primero.
	assert.Equal(t, entity.TransactionAdjustment, rows[0].TransactionType)
	assert.Equal(t, 11, rows[0].Quantity)
	assert.Equal(t, "Stock decreased from 15 to 4 via product update", rows[0].Notes)
	assert.Equal(t, entity.TransactionPurchase, rows[1].TransactionType)
	assert.Equal(t, 5, rows[1].Quantity)
	assert.Equal(t, "Stock increased from 10 to 15 via product update", rows[1].Notes)
	assert.Equal(t, "PRODUCT_UPDATED_"+p.ID, rows[1].Reference)
}

func TestProductUpdate_SoloCatalogoNoTocaLibro(t *testing.T) {
	f := newFixture()
	p := f.createProduct(t, "Café", 10)

	name := "Café molido"
	price := decimal.NewFromInt(7)
	same := 10
	got, err := f.products.Update(context.Background(), cashier, p.ID, dto.UpdateProductRequest{Name: &name, SellingPrice: &price, Stock: &same})
	require.NoError(t, err)
	assert.Equal(t, "Café molido", got.Name)
	assert.True(t, got.SellingPrice.Equal(price))
	assert.Len(t, f.ledger(t, p.ID), 1)

	_, err = f.products.Update(context.Background(), cashier, "000000", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductDelete_RegistraStockRestanteYConservaLibro(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.createProduct(t, "Té", 7)

	require.NoError(t, f.products.Delete(ctx, cashier, p.ID))
	_, err := f.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows := f.ledger(t, p.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.TransactionDelete, rows[0].TransactionType)
	assert.Equal(t, 7, rows[0].PreviousStock)
	assert.Equal(t, 0, rows[0].NewStock)
	assert.Equal(t, 7, rows[0].Quantity)
	assert.Equal(t, "PRODUCT_DELETED_"+p.ID, rows[0].Reference)
	assert.Equal(t, "Té", rows[0].ProductName)

	assert.ErrorIs(t, f.products.Delete(ctx, cashier, p.ID), domain.ErrNotFound)
}

func TestProductList_FiltroCategoriaYBusqueda(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProduct(t, "Agua", 1)
	_, err := f.products.Create(ctx, cashier, dto.CreateProductRequest{Name: "Pan", Category: "panadería"})
	require.NoError(t, err)

	all, err := f.products.List(ctx, dto.ProductQuery{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	list, err := f.products.List(ctx, dto.ProductQuery{Category: "panadería"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pan", list[0].Name)

	list, err = f.products.List(ctx, dto.ProductQuery{Search: "agu"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].LowStock)
}

func TestOrderCreate_Exitosa(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.createProduct(t, "Agua", 10)
	b := f.createProduct(t, "Pan", 5)

	res, err := f.orders.Create(ctx, cashier, dto.CreateOrderRequest{
		OrderType:          entity.OrderTypeDineIn,
		Cart:               []dto.CartLineRequest{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 1}},
		KitchenNote:        "sin hielo",
		TableCharge:        decimal.NewFromInt(3),
		DiscountPercentage: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Equal(t, inventory.BatchSuccess, res.Stock.Status)
	assert.Len(t, res.Stock.Succeeded, 2)
	// (2*5 + 1*5) * 0.9 + 3
	assert.True(t, res.Order.TotalAmount.Equal(decimal.RequireFromString("16.5")), res.Order.TotalAmount.String())
	assert.Equal(t, 8, f.stock(t, a.ID))
	assert.Equal(t, 4, f.stock(t, b.ID))

	rows := f.ledger(t, a.ID)
	assert.Equal(t, entity.TransactionSale, rows[0].TransactionType)
	assert.Equal(t, res.Order.ID, rows[0].Reference)
	assert.Equal(t, "Order dine-in - sin hielo", rows[0].Notes)
	require.NotNil(t, rows[0].Party)
	assert.Equal(t, "walk-in", rows[0].Party.Name)
	require.NotNil(t, rows[0].UserID)
	assert.Equal(t, cashier.ID, *rows[0].UserID)

	stored, err := f.orders.GetByID(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Cart, 2)
}

func TestOrderCreate_ParcialGuardaSoloLineasAtendibles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.createProduct(t, "Agua", 10)
	b := f.createProduct(t, "Pan", 1)

	res, err := f.orders.Create(ctx, cashier, dto.CreateOrderRequest{
		OrderType: entity.OrderTypeTakeaway,
		Cart:      []dto.CartLineRequest{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 3}},
		Customer:  &dto.CustomerRequest{ID: "c-1", Name: "Ana"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Equal(t, inventory.BatchPartial, res.Stock.Status)
	require.Len(t, res.Stock.Failed, 1)
	assert.Equal(t, b.ID, res.Stock.Failed[0].ProductID)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.Stock.Failed[0].Code)
	assert.Len(t, res.Order.Cart, 1)
	assert.Equal(t, 1, f.stock(t, b.ID))

	rows := f.ledger(t, a.ID)
	assert.Equal(t, "Ana", rows[0].Party.Name)
}

func TestOrderCreate_NingunaLineaNoGuardaOrden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.createProduct(t, "Pan", 1)

	res, err := f.orders.Create(ctx, cashier, dto.CreateOrderRequest{
		OrderType: entity.OrderTypeDelivery,
		Cart:      []dto.CartLineRequest{{ProductID: b.ID, Quantity: 3}, {ProductID: "999999", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Order)
	assert.Equal(t, inventory.BatchFailed, res.Stock.Status)
	assert.Len(t, res.Stock.Failed, 2)

	list, err := f.orders.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderCreate_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orders.Create(ctx, cashier, dto.CreateOrderRequest{OrderType: entity.OrderTypeDineIn})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.Create(ctx, cashier, dto.CreateOrderRequest{
		OrderType: "drive-thru",
		Cart:      []dto.CartLineRequest{{ProductID: "100001", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.Create(ctx, cashier, dto.CreateOrderRequest{
		OrderType: entity.OrderTypeDineIn,
		Cart:      []dto.CartLineRequest{{ProductID: "100001", Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.orders.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderUpdateStock_Lote(t *testing.T) {
	f := newFixture()
	a := f.createProduct(t, "Agua", 3)

	out, err := f.orders.UpdateStock(context.Background(), cashier, dto.UpdateStockRequest{
		CartItems: []dto.CartLineRequest{{ProductID: a.ID, Quantity: 2}, {ProductID: a.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.BatchPartial, out.Status)
	assert.Len(t, out.Succeeded, 1)
	assert.Equal(t, 1, f.stock(t, a.ID))
}

func TestReturnProcess_ClienteSumaStock(t *testing.T) {
	f := newFixture()
	a := f.createProduct(t, "Agua", 3)

	ret, err := f.returns.Process(context.Background(), cashier, dto.CreateReturnRequest{
		ProductID: a.ID, ReturnType: entity.ReturnTypeCustomer, Quantity: 2, Reason: "envase dañado",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusApproved, ret.Status)
	assert.Equal(t, 3, ret.PreviousStock)
	assert.Equal(t, 5, ret.NewStock)
	assert.True(t, ret.TotalValue.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5, f.stock(t, a.ID))

	rows := f.ledger(t, a.ID)
	assert.Equal(t, entity.TransactionCustomerReturn, rows[0].TransactionType)
	assert.Equal(t, ret.ID, rows[0].Reference)
	assert.Equal(t, "Customer Return", rows[0].Party.Name)
}

func TestReturnProcess_ProveedorSinStockSeRechaza(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.createProduct(t, "Agua", 1)

	_, err := f.returns.Process(ctx, cashier, dto.CreateReturnRequest{
		ProductID: a.ID, ReturnType: entity.ReturnTypeSupplier, Quantity: 2, Reason: "vencido",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, f.stock(t, a.ID))

	list, err := f.returns.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ReturnStatusRejected, list[0].Status)

	_, err = f.returns.Process(ctx, cashier, dto.CreateReturnRequest{ProductID: a.ID, ReturnType: "gift", Quantity: 1, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.returns.Process(ctx, cashier, dto.CreateReturnRequest{ProductID: "999999", ReturnType: entity.ReturnTypeCustomer, Quantity: 1, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// lostRaceProducts simula que otra petición se llevó el stock entre el snapshot y la escritura.
type lostRaceProducts struct {
	repository.ProductRepository
}

func (lostRaceProducts) AddStock(context.Context, string, int) (int, error) {
	return 0, domain.ErrInsufficientStock
}

func newLostRaceFixture() *fixture {
	store := memory.New()
	racing := lostRaceProducts{store.Products()}
	coord := inventory.NewCoordinator(store.TxRunner(), racing, store.Transitions(), inventory.Options{}, zerolog.Nop())
	full := inventory.NewCoordinator(store.TxRunner(), store.Products(), store.Transitions(), inventory.Options{}, zerolog.Nop())
	return &fixture{
		store: store,
		// El alta usa el coordinador normal para sembrar stock; el resto pierde la carrera.
		products: usecase.NewProductUseCase(store.Products(), full, zerolog.Nop()),
		orders:   usecase.NewOrderUseCase(store.Orders(), coord, zerolog.Nop()),
		returns:  usecase.NewReturnUseCase(store.Returns(), store.Products(), coord),
	}
}

func TestOrderCreate_TodasLasLineasFallanAlEscribirNoGuardaOrden(t *testing.T) {
	f := newLostRaceFixture()
	ctx := context.Background()
	a := f.createProduct(t, "Agua", 10)

	res, err := f.orders.Create(ctx, cashier, dto.CreateOrderRequest{
		OrderType: entity.OrderTypeTakeaway,
		Cart:      []dto.CartLineRequest{{ProductID: a.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Order)
	assert.Equal(t, inventory.BatchFailed, res.Stock.Status)
	require.Len(t, res.Stock.Failed, 1)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.Stock.Failed[0].Code)
	assert.Equal(t, 10, f.stock(t, a.ID))

	list, err := f.orders.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductUpdate_FalloDeStockNoGuardaCatalogo(t *testing.T) {
	store := memory.New()
	full := inventory.NewCoordinator(store.TxRunner(), store.Products(), store.Transitions(), inventory.Options{}, zerolog.Nop())
	racing := inventory.NewCoordinator(store.TxRunner(), lostRaceProducts{store.Products()}, store.Transitions(), inventory.Options{}, zerolog.Nop())
	ctx := context.Background()

	p, err := usecase.NewProductUseCase(store.Products(), full, zerolog.Nop()).Create(ctx, cashier, dto.CreateProductRequest{
		Name: "Agua", Category: "bebidas", CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(5), Stock: 4,
	})
	require.NoError(t, err)

	uc := usecase.NewProductUseCase(store.Products(), racing, zerolog.Nop())
	name, stock := "Agua mineral", 9
	_, err = uc.Update(ctx, cashier, p.ID, dto.UpdateProductRequest{Name: &name, Stock: &stock})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Agua", stored.Name)
	assert.Equal(t, 4, stored.Stock)
}
