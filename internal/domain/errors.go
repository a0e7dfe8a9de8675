package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrUsernameAlreadyExists  = errors.New("el usuario ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidTransactionType = errors.New("tipo de transacción inválido")
	// ErrLedgerWriteFailed: el stock se escribió pero el libro no. En modo best-effort solo se registra en log.
	ErrLedgerWriteFailed = errors.New("no se pudo registrar el movimiento en el libro de stock")
)
