package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/settings"
)

// SettingsHandler política de lotes de la empresa (protegido).
type SettingsHandler struct {
	uc  *settings.UseCase
	log zerolog.Logger
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *settings.UseCase, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{uc: uc, log: log}
}

// Get godoc
// @Summary      Política vigente
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SettingsResponse
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	s, err := h.uc.Get(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SettingsFromEntity(s))
}

// Update godoc
// @Summary      Actualizar política (admin)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateSettingsRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.SettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.UpdateSettingsRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	s, err := h.uc.Update(c.Context(), in.ToInput(companyID, userID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SettingsFromEntity(s))
}
