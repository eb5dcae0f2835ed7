package dto

import (
	"time"

	"github.com/shopspring/decimal"

	appinv "github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// PlanRequest body para POST /api/allocations/plan.
type PlanRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ToDomain convierte el request en una solicitud de asignación.
func (r PlanRequest) ToDomain() inventory.AllocationRequest {
	return inventory.AllocationRequest{ProductID: r.ProductID, WarehouseID: r.WarehouseID, Quantity: r.Quantity}
}

// PlanLineResponse línea (lote, cantidad) del plan.
type PlanLineResponse struct {
	LotID      string          `json:"lot_id"`
	LotNumber  string          `json:"lot_number"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiryDate string          `json:"expiry_date"`
}

// PlanResponse plan de asignación consultivo.
type PlanResponse struct {
	ProductID       string             `json:"product_id"`
	WarehouseID     string             `json:"warehouse_id"`
	Requested       decimal.Decimal    `json:"requested"`
	Allocated       decimal.Decimal    `json:"allocated"`
	Shortfall       decimal.Decimal    `json:"shortfall"`
	FullySatisfied  bool               `json:"fully_satisfied"`
	ValuationMethod string             `json:"valuation_method"`
	TotalCost       decimal.Decimal    `json:"total_cost"`
	Lines           []PlanLineResponse `json:"lines"`
}

// PlanFromDomain mapea un plan; nil devuelve nil.
func PlanFromDomain(p *inventory.AllocationPlan) *PlanResponse {
	if p == nil {
		return nil
	}
	out := &PlanResponse{
		ProductID:       p.ProductID,
		WarehouseID:     p.WarehouseID,
		Requested:       p.Requested,
		Allocated:       p.Allocated,
		Shortfall:       p.Shortfall,
		FullySatisfied:  p.FullySatisfied,
		ValuationMethod: p.ValuationMethod,
		TotalCost:       p.TotalCost,
		Lines:           make([]PlanLineResponse, 0, len(p.Lines)),
	}
	for _, l := range p.Lines {
		out.Lines = append(out.Lines, PlanLineResponse{
			LotID:      l.LotID,
			LotNumber:  l.LotNumber,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			ExpiryDate: l.ExpiryDate.Format(DateLayout),
		})
	}
	return out
}

// ReserveLineRequest par (lote, cantidad) a retener.
type ReserveLineRequest struct {
	LotID    string          `json:"lot_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	SaleReference string               `json:"sale_reference" validate:"required,max=120"`
	Lines         []ReserveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ToInput convierte el request en la entrada del caso de uso.
func (r ReserveRequest) ToInput(companyID, actorID string) appinv.ReserveInput {
	in := appinv.ReserveInput{CompanyID: companyID, ActorID: actorID, SaleReference: r.SaleReference}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, appinv.ReserveLine{LotID: l.LotID, Quantity: l.Quantity})
	}
	return in
}

// ReservationResponse estado de una reserva.
type ReservationResponse struct {
	ID            string          `json:"id"`
	SaleReference string          `json:"sale_reference"`
	LotID         string          `json:"lot_id"`
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Status        string          `json:"status"`
	Returned      bool            `json:"returned,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
}

// ReservationsFromEntities mapea reservas.
func ReservationsFromEntities(list []*entity.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, ReservationResponse{
			ID:            r.ID,
			SaleReference: r.SaleReference,
			LotID:         r.LotID,
			ProductID:     r.ProductID,
			Quantity:      r.Quantity,
			Status:        r.Status,
			Returned:      r.Returned,
			CreatedAt:     r.CreatedAt,
			ClosedAt:      r.ClosedAt,
		})
	}
	return out
}

// ReservationResultResponse resultado de reservar, confirmar, liberar o devolver.
type ReservationResultResponse struct {
	SaleReference string                `json:"sale_reference"`
	Changed       int                   `json:"changed"`
	Reservations  []ReservationResponse `json:"reservations"`
}

// ReservationResultFrom mapea el resultado del caso de uso.
func ReservationResultFrom(r *appinv.ReservationResult) ReservationResultResponse {
	return ReservationResultResponse{
		SaleReference: r.SaleReference,
		Changed:       r.Changed,
		Reservations:  ReservationsFromEntities(r.Reservations),
	}
}

// SaleRequest body para POST /api/sales (evento de venta).
type SaleRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	SaleReference string          `json:"sale_reference" validate:"required,max=120"`
	AllowPartial  bool            `json:"allow_partial,omitempty"`
}

// ToInput convierte el request en la entrada del caso de uso.
func (r SaleRequest) ToInput(companyID, actorID string) appinv.SaleInput {
	return appinv.SaleInput{
		CompanyID:     companyID,
		ActorID:       actorID,
		ProductID:     r.ProductID,
		WarehouseID:   r.WarehouseID,
		Quantity:      r.Quantity,
		SaleReference: r.SaleReference,
		AllowPartial:  r.AllowPartial,
	}
}

// SaleResponse resultado del evento de venta.
type SaleResponse struct {
	SaleReference string                `json:"sale_reference"`
	Reserved      bool                  `json:"reserved"`
	Committed     bool                  `json:"committed"`
	Idempotent    bool                  `json:"idempotent"`
	Plan          *PlanResponse         `json:"plan,omitempty"`
	Reservations  []ReservationResponse `json:"reservations"`
}

// SaleFrom mapea el resultado de HandleSale.
func SaleFrom(o *appinv.SaleOutcome) SaleResponse {
	return SaleResponse{
		SaleReference: o.SaleReference,
		Reserved:      o.Reserved,
		Committed:     o.Committed,
		Idempotent:    o.Idempotent,
		Plan:          PlanFromDomain(o.Plan),
		Reservations:  ReservationsFromEntities(o.Reservations),
	}
}

// ReturnSaleRequest body para POST /api/sales/:ref/return.
type ReturnSaleRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=255"`
}
