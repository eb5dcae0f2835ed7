package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
)

// AllocationHandler planes de asignación y reservas explícitas (protegido).
type AllocationHandler struct {
	planner      *inventory.PlannerUseCase
	reservations *inventory.ReservationUseCase
	log          zerolog.Logger
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(planner *inventory.PlannerUseCase, reservations *inventory.ReservationUseCase, log zerolog.Logger) *AllocationHandler {
	return &AllocationHandler{planner: planner, reservations: reservations, log: log}
}

// Plan godoc
// @Summary      Planificar asignación de lotes
// @Description  Plan consultivo: no retiene stock. Un plan parcial responde 200 con fully_satisfied=false.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlanRequest  true  "Producto, bodega y cantidad"
// @Success      200   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/allocations/plan [post]
func (h *AllocationHandler) Plan(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.PlanRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	plan, err := h.planner.Plan(c.Context(), companyID, in.ToDomain())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.PlanFromDomain(plan))
}

// Reserve godoc
// @Summary      Reservar líneas de un plan
// @Description  Todo o nada. Repetir la misma referencia devuelve las reservas existentes.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "Referencia de venta y líneas (lote, cantidad)"
// @Success      201   {object}  dto.ReservationResultResponse
// @Success      200   {object}  dto.ReservationResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *AllocationHandler) Reserve(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.ReserveRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.reservations.Reserve(c.Context(), in.ToInput(companyID, userID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	status := fiber.StatusCreated
	if res.Changed == 0 {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.ReservationResultFrom(res))
}

// GetReservations godoc
// @Summary      Reservas de una referencia de venta
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        ref  path  string  true  "Referencia de venta"
// @Success      200  {array}   dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{ref} [get]
func (h *AllocationHandler) GetReservations(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	list, err := h.reservations.GetByReference(c.Context(), companyID, c.Params("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservationsFromEntities(list))
}

// Commit godoc
// @Summary      Confirmar despacho de una referencia
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        ref  path  string  true  "Referencia de venta"
// @Success      200  {object}  dto.ReservationResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{ref}/commit [post]
func (h *AllocationHandler) Commit(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	res, err := h.reservations.Commit(c.Context(), companyID, userID, c.Params("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservationResultFrom(res))
}

// Release godoc
// @Summary      Liberar reservas de una referencia
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        ref  path  string  true  "Referencia de venta"
// @Success      200  {object}  dto.ReservationResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{ref}/release [post]
func (h *AllocationHandler) Release(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	res, err := h.reservations.Release(c.Context(), companyID, userID, c.Params("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservationResultFrom(res))
}
