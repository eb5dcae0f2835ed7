package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/expiry"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// AlertHandler alertas de vencimiento (protegido).
type AlertHandler struct {
	engine *expiry.Engine
	log    zerolog.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(engine *expiry.Engine, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{engine: engine, log: log}
}

// List godoc
// @Summary      Listar alertas de vencimiento
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        resolved  query  bool    false  "Filtrar por resueltas"
// @Param        severity  query  string  false  "critical | warning"
// @Param        limit     query  int     false  "Límite"  default(50)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	var q dto.ListAlertsQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, h.log, err)
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	list, total, err := h.engine.ListAlerts(c.Context(), entity.AlertFilter{
		CompanyID: companyID,
		Resolved:  q.Resolved,
		Severity:  q.Severity,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AlertListResponse{
		Items: dto.AlertsFromEntities(list),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	})
}

// Resolve godoc
// @Summary      Resolver alerta
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la alerta"
// @Param        body  body  dto.ResolveAlertRequest  true  "promotion | donation | disposal"
// @Success      200   {object}  dto.AlertResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.ResolveAlertRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	alert, err := h.engine.ResolveAlert(c.Context(), companyID, userID, c.Params("id"), in.Action)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AlertFromEntity(alert))
}

// Scan godoc
// @Summary      Ejecutar barrido de vencimientos de la empresa
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ScanResponse
// @Router       /api/alerts/scan [post]
func (h *AlertHandler) Scan(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	res, err := h.engine.ScanCompany(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ScanFrom(res))
}
