package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidState        = errors.New("operación no permitida para el estado actual")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrNegativeStock       = errors.New("la política no permite stock negativo")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
	ErrApprovalRequired    = errors.New("la operación requiere aprobación")
)
