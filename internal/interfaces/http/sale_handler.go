package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
)

// SaleHandler eventos de venta, despacho y devolución (protegido).
type SaleHandler struct {
	uc  *inventory.SaleUseCase
	log zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *inventory.SaleUseCase, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Handle godoc
// @Summary      Registrar evento de venta
// @Description  Planifica y, según la política, reserva (auto_reserve) y descuenta (auto_deduct).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "Producto, bodega, cantidad y referencia"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Handle(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.SaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.HandleSale(c.Context(), in.ToInput(companyID, userID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SaleFrom(out))
}

// Confirm godoc
// @Summary      Confirmar despacho de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        ref  path  string  true  "Referencia de venta"
// @Success      200  {object}  dto.ReservationResultResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{ref}/confirm [post]
func (h *SaleHandler) Confirm(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	res, err := h.uc.ConfirmShipment(c.Context(), companyID, userID, c.Params("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservationResultFrom(res))
}

// Cancel godoc
// @Summary      Cancelar una venta (libera sus reservas)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        ref  path  string  true  "Referencia de venta"
// @Success      200  {object}  dto.ReservationResultResponse
// @Router       /api/sales/{ref}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	res, err := h.uc.CancelSale(c.Context(), companyID, userID, c.Params("ref"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservationResultFrom(res))
}

// Return godoc
// @Summary      Devolución de una venta despachada
// @Description  Requiere auto_return; reingresa al kardex lo despachado, una sola vez por reserva.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ref   path  string                 true   "Referencia de venta"
// @Param        body  body  dto.ReturnSaleRequest  false  "Motivo"
// @Success      200   {object}  dto.ReservationResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{ref}/return [post]
func (h *SaleHandler) Return(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.ReturnSaleRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return writeError(c, h.log, err)
		}
	}
	res, err := h.uc.ReturnSale(c.Context(), companyID, userID, c.Params("ref"), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservationResultFrom(res))
}
