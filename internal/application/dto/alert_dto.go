package dto

import (
	"time"

	"github.com/jhoicas/lotes-api/internal/application/expiry"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ListAlertsQuery filtros de GET /api/alerts.
type ListAlertsQuery struct {
	Limit    int    `query:"limit" validate:"min=0,max=200"`
	Offset   int    `query:"offset" validate:"min=0"`
	Resolved *bool  `query:"resolved"`
	Severity string `query:"severity" validate:"omitempty,oneof=critical warning info"`
}

// ResolveAlertRequest body para POST /api/alerts/:id/resolve.
type ResolveAlertRequest struct {
	Action string `json:"action" validate:"required,oneof=promotion donation disposal"`
}

// AlertResponse alerta de vencimiento.
type AlertResponse struct {
	ID            string     `json:"id"`
	ProductID     string     `json:"product_id"`
	LotID         string     `json:"lot_id"`
	LotNumber     string     `json:"lot_number"`
	DaysRemaining int        `json:"days_remaining"`
	Severity      string     `json:"severity"`
	ActionTaken   string     `json:"action_taken,omitempty"`
	Resolved      bool       `json:"resolved"`
	ResolvedBy    string     `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AlertListResponse listado paginado de alertas.
type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AlertFromEntity mapea una alerta.
func AlertFromEntity(a *entity.ExpiryAlert) AlertResponse {
	return AlertResponse{
		ID:            a.ID,
		ProductID:     a.ProductID,
		LotID:         a.LotID,
		LotNumber:     a.LotNumber,
		DaysRemaining: a.DaysRemaining,
		Severity:      a.Severity,
		ActionTaken:   a.ActionTaken,
		Resolved:      a.Resolved,
		ResolvedBy:    a.ResolvedBy,
		ResolvedAt:    a.ResolvedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AlertsFromEntities mapea un listado.
func AlertsFromEntities(list []*entity.ExpiryAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, AlertFromEntity(a))
	}
	return out
}

// ScanResponse resumen de un barrido de vencimientos.
type ScanResponse struct {
	ScannedLots          int `json:"scanned_lots"`
	ExpiredLots          int `json:"expired_lots"`
	AlertsUpserted       int `json:"alerts_upserted"`
	AlertsResolved       int `json:"alerts_resolved"`
	ReleasedReservations int `json:"released_reservations"`
	CriticalOpen         int `json:"critical_open"`
	WarningOpen          int `json:"warning_open"`
}

// ScanFrom mapea el resultado del motor.
func ScanFrom(r *expiry.ScanResult) ScanResponse {
	return ScanResponse{
		ScannedLots:          r.ScannedLots,
		ExpiredLots:          r.ExpiredLots,
		AlertsUpserted:       r.AlertsUpserted,
		AlertsResolved:       r.AlertsResolved,
		ReleasedReservations: r.ReleasedReservations,
		CriticalOpen:         r.CriticalOpen,
		WarningOpen:          r.WarningOpen,
	}
}
