package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
)

// OrderHandler órdenes del POS y ventas sin orden.
type OrderHandler struct {
	uc *usecase.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden y descontar stock por línea
// @Description  201 si todas las líneas se atendieron, 207 si solo algunas, 409 si ninguna (no se guarda la orden).
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Orden"
// @Success      201   {object}  dto.OrderResult
// @Success      207   {object}  dto.OrderResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.OrderResult
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	if out.Order == nil {
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	return c.Status(batchStatusCode(out.Stock.Status, fiber.StatusCreated)).JSON(out)
}

// UpdateStock godoc
// @Summary      Venta sin orden: descuenta stock por línea
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateStockRequest  true  "Líneas"
// @Success      200   {object}  dto.BatchDTO
// @Success      207   {object}  dto.BatchDTO
// @Failure      409   {object}  dto.BatchDTO
// @Router       /api/orders/update-stock [post]
func (h *OrderHandler) UpdateStock(c *fiber.Ctx) error {
	var in dto.UpdateStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateStock(c.UserContext(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(batchStatusCode(out.Status, fiber.StatusOK)).JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
