package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// LotHandler maneja las peticiones HTTP de lotes, recepciones y kardex (protegido).
type LotHandler struct {
	uc  *inventory.LotUseCase
	log zerolog.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *inventory.LotUseCase, log zerolog.Logger) *LotHandler {
	return &LotHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "Datos del lote"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	return h.create(c, h.uc.CreateLot)
}

// Receive godoc
// @Summary      Recepción de mercancía
// @Description  Crea el lote en active si la empresa tiene auto_receive; si no, en quarantine.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "Datos del lote recibido"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *LotHandler) Receive(c *fiber.Ctx) error {
	return h.create(c, h.uc.ReceiveLot)
}

func (h *LotHandler) create(c *fiber.Ctx, create func(context.Context, inventory.CreateLotInput) (*entity.Lot, error)) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.CreateLotRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	mfg, exp, err := in.Dates()
	if err != nil {
		return writeError(c, h.log, domain.ErrInvalidInput)
	}
	lot, err := create(c.Context(), inventory.CreateLotInput{
		CompanyID:             companyID,
		ActorID:               userID,
		ProductID:             in.ProductID,
		LotNumber:             in.LotNumber,
		ManufacturingDate:     mfg,
		ExpiryDate:            exp,
		Quantity:              in.Quantity,
		CostPrice:             in.CostPrice,
		OriginID:              in.OriginID,
		WarehouseID:           in.WarehouseID,
		Location:              in.Location,
		QualityCertificateRef: in.QualityCertificateRef,
		Status:                in.Status,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LotFromEntity(lot))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	lot, err := h.uc.GetLot(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LotFromEntity(lot))
}

// List godoc
// @Summary      Listar lotes
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        product_id            query  string  false  "Producto"
// @Param        warehouse_id          query  string  false  "Bodega"
// @Param        status                query  string  false  "active | quarantine | expired | recalled"
// @Param        expiring_within_days  query  int     false  "Vence en N días o menos"
// @Param        search                query  string  false  "Número de lote, ubicación o certificado"
// @Param        limit                 query  int     false  "Límite"  default(50)
// @Param        offset                query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	var q dto.ListLotsQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, h.log, err)
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	lots, total, err := h.uc.ListLots(c.Context(), entity.LotFilter{
		CompanyID:          companyID,
		ProductID:          q.ProductID,
		WarehouseID:        q.WarehouseID,
		Status:             q.Status,
		ExpiringWithinDays: q.ExpiringWithinDays,
		Search:             q.Search,
		Limit:              q.Limit,
		Offset:             q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LotListResponse{
		Items: dto.LotsFromEntities(lots),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	})
}

// Movements godoc
// @Summary      Kardex del lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	list, err := h.uc.GetLotMovements(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// Reconciliation godoc
// @Summary      Conciliación kardex vs cantidad en mano
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/reconciliation [get]
func (h *LotHandler) Reconciliation(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	rec, err := h.uc.ReconcileLot(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReconciliationFromDomain(rec))
}

// Adjust godoc
// @Summary      Ajustar cantidad del lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del lote"
// @Param        body  body  dto.AdjustQuantityRequest  true  "type, delta con signo, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/adjustments [post]
func (h *LotHandler) Adjust(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.AdjustQuantityRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	mov, err := h.uc.AdjustQuantity(c.Context(), inventory.AdjustInput{
		CompanyID: companyID,
		ActorID:   userID,
		LotID:     c.Params("id"),
		Type:      in.Type,
		Delta:     in.Delta,
		Reason:    in.Reason,
		Reference: in.Reference,
		Approved:  in.Approved,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// Count godoc
// @Summary      Registrar conteo físico
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote"
// @Param        body  body  dto.CountLotRequest  true  "Cantidad contada"
// @Success      200   {object}  dto.CountResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/counts [post]
func (h *LotHandler) Count(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.CountLotRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	mov, err := h.uc.CountLot(c.Context(), inventory.CountInput{
		CompanyID:       companyID,
		ActorID:         userID,
		LotID:           c.Params("id"),
		CountedQuantity: in.CountedQuantity,
		Reason:          in.Reason,
		Approved:        in.Approved,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.CountResponse{Adjusted: mov != nil}
	if mov != nil {
		m := dto.MovementFromEntity(mov)
		out.Movement = &m
	}
	return c.JSON(out)
}

// Transfer godoc
// @Summary      Trasladar lote a otra bodega
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.TransferLotRequest  true  "Bodega destino"
// @Success      201   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transfer [post]
func (h *LotHandler) Transfer(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.TransferLotRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	mov, err := h.uc.TransferLot(c.Context(), inventory.TransferInput{
		CompanyID:     companyID,
		ActorID:       userID,
		LotID:         c.Params("id"),
		ToWarehouseID: in.ToWarehouseID,
		Location:      in.Location,
		Reason:        in.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// ChangeStatus godoc
// @Summary      Cambiar estado del lote
// @Description  active <-> quarantine; cualquier estado no terminal -> recalled.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del lote"
// @Param        body  body  dto.ChangeLotStatusRequest  true  "Nuevo estado y motivo"
// @Success      200   {object}  dto.LotResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/status [post]
func (h *LotHandler) ChangeStatus(c *fiber.Ctx) error {
	companyID, userID, ok := tenant(c)
	if !ok {
		return nil
	}
	var in dto.ChangeLotStatusRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lot, err := h.uc.ChangeStatus(c.Context(), inventory.ChangeStatusInput{
		CompanyID: companyID,
		ActorID:   userID,
		LotID:     c.Params("id"),
		Status:    in.Status,
		Reason:    in.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LotFromEntity(lot))
}

// Stats godoc
// @Summary      Agregados del inventario por lotes
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Router       /api/stats [get]
func (h *LotHandler) Stats(c *fiber.Ctx) error {
	companyID, _, ok := tenant(c)
	if !ok {
		return nil
	}
	stats, err := h.uc.GetStats(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StatsFrom(stats))
}
