package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
)

// writeError traduce un error de dominio a status HTTP + ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := inventory.ErrorCode(err)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrUsernameAlreadyExists):
		status, code = fiber.StatusConflict, "USERNAME_EXISTS"
	case errors.Is(err, domain.ErrInvalidTransactionType), errors.Is(err, domain.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// batchStatusCode 200 éxito total, 207 parcial, 409 si ninguna línea se aplicó.
func batchStatusCode(status string, okStatus int) int {
	switch status {
	case inventory.BatchPartial:
		return fiber.StatusMultiStatus
	case inventory.BatchFailed:
		return fiber.StatusConflict
	default:
		return okStatus
	}
}
