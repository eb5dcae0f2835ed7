package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// CreateLotRequest body para POST /api/lots y POST /api/receipts.
type CreateLotRequest struct {
	ProductID             string          `json:"product_id" validate:"required"`
	WarehouseID           string          `json:"warehouse_id" validate:"required"`
	LotNumber             string          `json:"lot_number" validate:"required,max=80"`
	ManufacturingDate     string          `json:"manufacturing_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate            string          `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Quantity              decimal.Decimal `json:"quantity"`
	CostPrice             decimal.Decimal `json:"cost_price"`
	OriginID              string          `json:"origin_id,omitempty"`
	Location              string          `json:"location,omitempty" validate:"max=120"`
	QualityCertificateRef string          `json:"quality_certificate_ref,omitempty" validate:"max=120"`
	Status                string          `json:"status,omitempty" validate:"omitempty,oneof=active quarantine"`
}

// Dates interpreta las fechas de calendario del request.
func (r CreateLotRequest) Dates() (mfg, exp time.Time, err error) {
	if mfg, err = time.Parse(DateLayout, r.ManufacturingDate); err != nil {
		return
	}
	exp, err = time.Parse(DateLayout, r.ExpiryDate)
	return
}

// LotResponse representación de un lote.
type LotResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	WarehouseID           string          `json:"warehouse_id"`
	LotNumber             string          `json:"lot_number"`
	ManufacturingDate     string          `json:"manufacturing_date"`
	ExpiryDate            string          `json:"expiry_date"`
	InitialQuantity       decimal.Decimal `json:"initial_quantity"`
	QuantityOnHand        decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved      decimal.Decimal `json:"quantity_reserved"`
	QuantityAvailable     decimal.Decimal `json:"quantity_available"`
	CostPrice             decimal.Decimal `json:"cost_price"`
	OriginID              string          `json:"origin_id,omitempty"`
	Location              string          `json:"location,omitempty"`
	Status                string          `json:"status"`
	QualityCertificateRef string          `json:"quality_certificate_ref,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// LotListResponse listado paginado de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// LotFromEntity mapea un lote a su respuesta.
func LotFromEntity(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:                    l.ID,
		ProductID:             l.ProductID,
		WarehouseID:           l.WarehouseID,
		LotNumber:             l.LotNumber,
		ManufacturingDate:     l.ManufacturingDate.Format(DateLayout),
		ExpiryDate:            l.ExpiryDate.Format(DateLayout),
		InitialQuantity:       l.InitialQuantity,
		QuantityOnHand:        l.QuantityOnHand,
		QuantityReserved:      l.QuantityReserved,
		QuantityAvailable:     l.Available(),
		CostPrice:             l.CostPrice,
		OriginID:              l.OriginID,
		Location:              l.Location,
		Status:                l.Status,
		QualityCertificateRef: l.QualityCertificateRef,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

// LotsFromEntities mapea un listado.
func LotsFromEntities(list []*entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(list))
	for _, l := range list {
		out = append(out, LotFromEntity(l))
	}
	return out
}

// ListLotsQuery filtros de GET /api/lots.
type ListLotsQuery struct {
	Limit              int    `query:"limit" validate:"min=0,max=200"`
	Offset             int    `query:"offset" validate:"min=0"`
	ProductID          string `query:"product_id"`
	WarehouseID        string `query:"warehouse_id"`
	Status             string `query:"status" validate:"omitempty,oneof=active quarantine expired recalled"`
	ExpiringWithinDays *int   `query:"expiring_within_days" validate:"omitempty,min=0"`
	Search             string `query:"search"`
}

// AdjustQuantityRequest body para POST /api/lots/:id/adjustments.
type AdjustQuantityRequest struct {
	Type      string          `json:"type,omitempty" validate:"omitempty,oneof=entry exit adjustment"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason" validate:"required,max=255"`
	Reference string          `json:"reference,omitempty" validate:"max=120"`
	Approved  bool            `json:"approved,omitempty"`
}

// CountLotRequest body para POST /api/lots/:id/counts.
type CountLotRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Reason          string          `json:"reason,omitempty" validate:"max=255"`
	Approved        bool            `json:"approved,omitempty"`
}

// TransferLotRequest body para POST /api/lots/:id/transfer.
type TransferLotRequest struct {
	ToWarehouseID string `json:"to_warehouse_id" validate:"required"`
	Location      string `json:"location,omitempty" validate:"max=120"`
	Reason        string `json:"reason,omitempty" validate:"max=255"`
}

// ChangeLotStatusRequest body para POST /api/lots/:id/status.
type ChangeLotStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active quarantine recalled"`
	Reason string `json:"reason" validate:"required,max=255"`
}

// MovementResponse entrada del kardex.
type MovementResponse struct {
	ID              string          `json:"id"`
	LotID           string          `json:"lot_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	ActorID         string          `json:"actor_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MovementFromEntity mapea un movimiento.
func MovementFromEntity(m *entity.LotMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		LotID:           m.LotID,
		Type:            m.Type,
		Quantity:        m.Quantity,
		FromWarehouseID: m.FromWarehouseID,
		ToWarehouseID:   m.ToWarehouseID,
		Reference:       m.Reference,
		Reason:          m.Reason,
		ActorID:         m.ActorID,
		CreatedAt:       m.CreatedAt,
	}
}

// MovementsFromEntities mapea el kardex de un lote.
func MovementsFromEntities(list []*entity.LotMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementFromEntity(m))
	}
	return out
}

// CountResponse resultado de un conteo; Movement es nil si no hubo diferencia.
type CountResponse struct {
	Adjusted bool              `json:"adjusted"`
	Movement *MovementResponse `json:"movement,omitempty"`
}

// ReconciliationResponse comparación kardex vs cantidad en mano.
type ReconciliationResponse struct {
	LotID           string          `json:"lot_id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	QuantityOnHand  decimal.Decimal `json:"quantity_on_hand"`
	LedgerSum       decimal.Decimal `json:"ledger_sum"`
	Difference      decimal.Decimal `json:"difference"`
	Consistent      bool            `json:"consistent"`
	Movements       int             `json:"movements"`
}

// ReconciliationFromDomain mapea la conciliación.
func ReconciliationFromDomain(r *inventory.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		LotID:           r.LotID,
		InitialQuantity: r.InitialQuantity,
		QuantityOnHand:  r.QuantityOnHand,
		LedgerSum:       r.LedgerSum,
		Difference:      r.Difference,
		Consistent:      r.Consistent,
		Movements:       r.Movements,
	}
}
