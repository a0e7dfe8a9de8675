package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/pos-api/internal/interfaces/http"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	coord := inventory.NewCoordinator(store.TxRunner(), store.Products(), store.Transitions(), inventory.Options{}, zerolog.Nop())
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	_, err := authUC.EnsureUser(context.Background(), "admin", "admin-secreto", entity.RoleAdmin)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		ProductUC: usecase.NewProductUseCase(store.Products(), coord, zerolog.Nop()),
		OrderUC:   usecase.NewOrderUseCase(store.Orders(), coord, zerolog.Nop()),
		ReturnUC:  usecase.NewReturnUseCase(store.Returns(), store.Products(), coord),
		LedgerUC:  inventory.NewLedgerUseCase(coord, store.Transitions()),
		JWTSecret: testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (f *apiFixture) createProduct(t *testing.T, name string, stock int) dto.ProductResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/products", "manager", map[string]interface{}{
		"name":         name,
		"category":     "bebidas",
		"costPrice":    "2",
		"sellingPrice": "5",
		"stock":        stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p
}

func TestLogin_DevuelveToken(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "admin-secreto"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "mala"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister_SoloAdmin(t *testing.T) {
	f := newAPI(t)
	in := dto.RegisterRequest{Username: "caja2", Password: "secreto123"}

	resp := f.do(t, http.MethodPost, "/api/auth/register", "cashier", in)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/register", "admin", in)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/register", "admin", in)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProductCreate_ValidacionYPermisos(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/products", "manager", map[string]interface{}{"category": "bebidas"})
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	assert.Contains(t, e.Message, "Name: required")

	resp = f.do(t, http.MethodPost, "/api/products", "cashier", map[string]interface{}{"name": "Agua", "category": "bebidas"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProductGet_NoExiste404(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/products/999999", "cashier", nil)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", e.Code)
}

func TestOrderCreate_CodigosPorResultado(t *testing.T) {
	f := newAPI(t)
	a := f.createProduct(t, "Agua", 10)
	b := f.createProduct(t, "Jugo", 1)

	full := dto.CreateOrderRequest{OrderType: "takeaway", Cart: []dto.CartLineRequest{{ProductID: a.ID, Quantity: 2}}}
	resp := f.do(t, http.MethodPost, "/api/orders", "cashier", full)
	var res dto.OrderResult
	decode(t, resp, &res)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, res.Order)
	assert.Equal(t, inventory.BatchSuccess, res.Stock.Status)

	partial := dto.CreateOrderRequest{OrderType: "takeaway", Cart: []dto.CartLineRequest{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 5},
	}}
	resp = f.do(t, http.MethodPost, "/api/orders", "cashier", partial)
	res = dto.OrderResult{}
	decode(t, resp, &res)
	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	require.Len(t, res.Stock.Failed, 1)
	assert.Equal(t, b.ID, res.Stock.Failed[0].ProductID)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.Stock.Failed[0].Code)

	none := dto.CreateOrderRequest{OrderType: "takeaway", Cart: []dto.CartLineRequest{{ProductID: b.ID, Quantity: 5}}}
	resp = f.do(t, http.MethodPost, "/api/orders", "cashier", none)
	res = dto.OrderResult{}
	decode(t, resp, &res)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Nil(t, res.Order)
	assert.Equal(t, inventory.BatchFailed, res.Stock.Status)
}

func TestOrderUpdateStock_Parcial207(t *testing.T) {
	f := newAPI(t)
	a := f.createProduct(t, "Agua", 3)

	resp := f.do(t, http.MethodPost, "/api/orders/update-stock", "cashier", dto.UpdateStockRequest{CartItems: []dto.CartLineRequest{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: "999999", Quantity: 1},
	}})
	var out dto.BatchDTO
	decode(t, resp, &out)
	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	assert.Equal(t, inventory.BatchPartial, out.Status)
	require.Len(t, out.Succeeded, 1)
	assert.Equal(t, 1, out.Succeeded[0].NewStock)
	assert.Equal(t, testUserID, *out.Succeeded[0].User)
}

func TestReturnCreate(t *testing.T) {
	f := newAPI(t)
	a := f.createProduct(t, "Agua", 1)

	resp := f.do(t, http.MethodPost, "/api/returns", "cashier", dto.CreateReturnRequest{
		ProductID: a.ID, ReturnType: "customer", Quantity: 2, Reason: "Vencido",
	})
	var out dto.ReturnResponse
	decode(t, resp, &out)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.ReturnStatusApproved, out.Status)
	assert.Equal(t, 3, out.NewStock)

	resp = f.do(t, http.MethodPost, "/api/returns", "cashier", dto.CreateReturnRequest{
		ProductID: a.ID, ReturnType: "supplier", Quantity: 10, Reason: "Defecto",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStockTransitions_CrearYConsultar(t *testing.T) {
	f := newAPI(t)
	a := f.createProduct(t, "Agua", 10)

	resp := f.do(t, http.MethodPost, "/api/stock-transitions", "manager", dto.CreateStockTransitionRequest{
		ProductID: a.ID, TransactionType: entity.TransactionAdjustment, Quantity: 4, Notes: "conteo físico",
	})
	var tr dto.StockTransitionResponse
	decode(t, resp, &tr)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 10, tr.PreviousStock)
	assert.Equal(t, 4, tr.NewStock)
	assert.Equal(t, 6, tr.Quantity)
	assert.True(t, tr.LedgerRecorded)

	resp = f.do(t, http.MethodPost, "/api/stock-transitions", "manager", dto.CreateStockTransitionRequest{
		ProductID: a.ID, TransactionType: entity.TransactionDelete,
	})
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSACTION_TYPE", e.Code)

	resp = f.do(t, http.MethodGet, "/api/stock-transitions?productId="+a.ID+"&transactionType=adjustment", "cashier", nil)
	var list dto.StockTransitionListResponse
	decode(t, resp, &list)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Transitions, 1)
	assert.Equal(t, 1, list.Pagination.Total)
	assert.Equal(t, 1, list.Pagination.Pages)

	resp = f.do(t, http.MethodGet, "/api/stock-transitions?startDate=ayer", "cashier", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/stock-transitions", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductDelete_ConservaLibro(t *testing.T) {
	f := newAPI(t)
	a := f.createProduct(t, "Agua", 7)

	resp := f.do(t, http.MethodDelete, "/api/products/"+a.ID, "admin", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/stock-transitions?productId="+a.ID, "admin", nil)
	var list dto.StockTransitionListResponse
	decode(t, resp, &list)
	require.Len(t, list.Transitions, 2)
	assert.Equal(t, entity.TransactionDelete, list.Transitions[0].TransactionType)
	assert.Equal(t, 7, list.Transitions[0].Quantity)
}
