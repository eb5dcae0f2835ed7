package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
)

var validate = validator.New()

var errInvalidBody = errors.New("cuerpo inválido")

// parseBody decodifica el JSON del body y aplica las reglas validate del DTO.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return validate.Struct(out)
}

// parseQuery decodifica y valida los parámetros de consulta.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return errInvalidBody
	}
	return validate.Struct(out)
}

// errorMapping estado HTTP y código para cada error de dominio.
var errorMapping = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE", "operación no permitida para el estado actual"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "no hay stock suficiente para esta solicitud"},
	{domain.ErrNegativeStock, fiber.StatusConflict, "NEGATIVE_STOCK", "la política no permite stock negativo"},
	{domain.ErrConcurrencyConflict, fiber.StatusServiceUnavailable, "CONCURRENCY_CONFLICT", "conflicto de concurrencia, reintente"},
	{domain.ErrApprovalRequired, fiber.StatusUnprocessableEntity, "APPROVAL_REQUIRED", "la operación requiere aprobación"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
}

// writeError traduce un error de validación o de dominio a la respuesta HTTP.
// Los errores no reconocidos se registran y se responden como 500 sin detalle interno.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	if errors.Is(err, errInvalidBody) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields})
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// tenant devuelve company_id y user_id del token o escribe 401.
func tenant(c *fiber.Ctx) (companyID, userID string, ok bool) {
	companyID, userID = GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		return "", "", false
	}
	return companyID, userID, true
}
