package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
)

// StockTransitionHandler movimientos directos y consulta del libro de stock.
type StockTransitionHandler struct {
	uc *inventory.LedgerUseCase
}

// NewStockTransitionHandler construye el handler.
func NewStockTransitionHandler(uc *inventory.LedgerUseCase) *StockTransitionHandler {
	return &StockTransitionHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar movimiento de stock
// @Description  Para adjustment, quantity es el stock objetivo. delete no se acepta por esta vía.
// @Tags         stock-transitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockTransitionRequest  true  "Movimiento"
// @Success      201   {object}  dto.StockTransitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transitions [post]
func (h *StockTransitionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockTransitionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), Actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Consultar el libro de stock
// @Tags         stock-transitions
// @Security     Bearer
// @Produce      json
// @Param        page             query  int     false  "Página"  default(1)
// @Param        limit            query  int     false  "Límite"  default(50)
// @Param        productId        query  string  false  "Producto"
// @Param        transactionType  query  string  false  "Tipo (all = todos)"
// @Param        startDate        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        endDate          query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, día completo)"
// @Success      200  {object}  dto.StockTransitionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-transitions [get]
func (h *StockTransitionHandler) List(c *fiber.Ctx) error {
	var q dto.StockTransitionQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
