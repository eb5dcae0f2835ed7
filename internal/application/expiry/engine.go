package expiry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// ScanResult resumen de un barrido de vencimientos.
type ScanResult struct {
	Companies            int
	ScannedLots          int
	ExpiredLots          int
	AlertsUpserted       int
	AlertsResolved       int
	ReleasedReservations int
	CriticalOpen         int
	WarningOpen          int
}

func (r *ScanResult) add(o *ScanResult) {
	r.Companies += o.Companies
	r.ScannedLots += o.ScannedLots
	r.ExpiredLots += o.ExpiredLots
	r.AlertsUpserted += o.AlertsUpserted
	r.AlertsResolved += o.AlertsResolved
	r.ReleasedReservations += o.ReleasedReservations
	r.CriticalOpen += o.CriticalOpen
	r.WarningOpen += o.WarningOpen
}

// Engine Expiry Alert Engine: vence lotes, mantiene una alerta por lote vigilado y registra resoluciones.
type Engine struct {
	deps inventory.Deps
}

// NewEngine construye el motor de alertas.
func NewEngine(deps inventory.Deps) *Engine {
	deps.Normalize()
	return &Engine{deps: deps}
}

// ScanAll barre todas las empresas con lotes. Un fallo en una empresa no detiene las demás.
func (e *Engine) ScanAll(ctx context.Context) (*ScanResult, error) {
	start := e.deps.Clock.Now()
	companies, err := e.deps.Repos.Lots.ListCompanyIDs(ctx)
	if err != nil {
		return nil, err
	}
	total := &ScanResult{}
	var errs []error
	for _, companyID := range companies {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := e.scan(ctx, companyID)
		if err != nil {
			e.log().Error().Err(err).Str("company_id", companyID).Msg("barrido de vencimientos fallido")
			errs = append(errs, err)
			continue
		}
		total.add(res)
	}
	e.deps.Metrics.ExpiryScanCompleted(e.deps.Clock.Now().Sub(start), total.ExpiredLots, total.AlertsUpserted)
	return total, errors.Join(errs...)
}

// ScanCompany barre los lotes activos de una empresa con la configuración vigente.
func (e *Engine) ScanCompany(ctx context.Context, companyID string) (*ScanResult, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	start := e.deps.Clock.Now()
	res, err := e.scan(ctx, companyID)
	if err != nil {
		return nil, err
	}
	e.deps.Metrics.ExpiryScanCompleted(e.deps.Clock.Now().Sub(start), res.ExpiredLots, res.AlertsUpserted)
	return res, nil
}

func (e *Engine) scan(ctx context.Context, companyID string) (*ScanResult, error) {
	var (
		res    *ScanResult
		events []ports.Event
	)
	err := e.deps.WithRetry(ctx, "expiry_scan", func() error {
		return e.deps.RunTx(ctx, func(repos ports.Repositories) error {
			var err error
			res, events, err = e.scanInTx(ctx, repos, companyID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	e.deps.Metrics.OpenAlerts(companyID, res.CriticalOpen, res.WarningOpen)
	e.deps.Publish(ctx, events)
	e.log().Info().Str("company_id", companyID).Int("lots", res.ScannedLots).Int("expired", res.ExpiredLots).
		Int("alerts", res.AlertsUpserted).Int("resolved", res.AlertsResolved).Msg("barrido de vencimientos")
	return res, nil
}

// scanInTx recalcula el conjunto de alertas. Idempotente dentro del mismo día.
func (e *Engine) scanInTx(ctx context.Context, repos ports.Repositories, companyID string) (*ScanResult, []ports.Event, error) {
	policy, err := settings.Resolve(ctx, repos.Settings, companyID)
	if err != nil {
		return nil, nil, err
	}
	lots, err := repos.Lots.ListActive(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	now := e.deps.Clock.Now()
	today := domaininv.DateOnly(now)
	res := &ScanResult{Companies: 1, ScannedLots: len(lots)}
	var events []ports.Event
	alerted := make(map[string]bool)

	for _, lot := range lots {
		if !domaininv.IsTracked(lot) {
			continue
		}
		days := domaininv.DaysToExpire(lot.ExpiryDate, today)
		outcome := domaininv.ClassifyExpiry(days, policy.ExpiryWarningDays)
		switch outcome {
		case domaininv.ExpiryExpired:
			evs, released, err := e.expireLot(ctx, repos, companyID, lot.ID, now)
			if err != nil {
				return nil, nil, err
			}
			if evs != nil {
				res.ExpiredLots++
				res.ReleasedReservations += released
				events = append(events, evs...)
			}
		case domaininv.ExpiryCritical, domaininv.ExpiryWarning:
			alert, raised, err := upsertAlert(ctx, repos, lot, days, outcome.Severity(), now)
			if err != nil {
				return nil, nil, err
			}
			alerted[lot.ID] = true
			res.AlertsUpserted++
			if raised {
				events = append(events, inventory.AlertEvent(ports.EventAlertRaised, alert, now))
			}
			if !alert.Resolved {
				if alert.Severity == entity.AlertSeverityCritical {
					res.CriticalOpen++
				} else {
					res.WarningOpen++
				}
			}
		}
	}

	open, err := repos.Alerts.ListOpen(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range open {
		if alerted[a.LotID] {
			continue
		}
		resolved, err := inventory.AutoResolveAlert(ctx, repos, companyID, a.LotID, now)
		if err != nil {
			return nil, nil, err
		}
		if resolved != nil {
			res.AlertsResolved++
			events = append(events, inventory.AlertEvent(ports.EventAlertResolved, resolved, now))
		}
	}
	return res, events, nil
}

// expireLot pasa el lote a expired y libera sus reservas held. Devuelve nil si otro proceso ya lo cambió.
func (e *Engine) expireLot(ctx context.Context, repos ports.Repositories, companyID, lotID string, now time.Time) ([]ports.Event, int, error) {
	lot, err := repos.Lots.GetForUpdate(ctx, companyID, lotID)
	if err != nil {
		return nil, 0, err
	}
	if lot == nil || lot.Status != entity.LotStatusActive {
		return nil, 0, nil
	}
	released, err := inventory.ReleaseHeldForLot(ctx, repos, lot, now)
	if err != nil {
		return nil, 0, err
	}
	lot.Status = entity.LotStatusExpired
	lot.UpdatedAt = now
	if err := repos.Lots.Update(ctx, lot); err != nil {
		return nil, 0, err
	}
	events := []ports.Event{inventory.LotStatusEvent(ports.EventLotExpired, lot, now)}
	for _, r := range released {
		events = append(events, inventory.ReservationEvent(r, now))
	}
	return events, len(released), nil
}

// upsertAlert crea o refresca la alerta del lote. Una resolución manual se conserva;
// una resolución automática se reabre porque el lote volvió al conjunto vigilado.
func upsertAlert(ctx context.Context, repos ports.Repositories, lot *entity.Lot, days int, severity string, now time.Time) (*entity.ExpiryAlert, bool, error) {
	alert, err := repos.Alerts.GetByLot(ctx, lot.CompanyID, lot.ID)
	if err != nil {
		return nil, false, err
	}
	raised := false
	switch {
	case alert == nil:
		alert = &entity.ExpiryAlert{
			ID:          uuid.New().String(),
			CompanyID:   lot.CompanyID,
			ProductID:   lot.ProductID,
			LotID:       lot.ID,
			ActionTaken: entity.AlertActionNone,
			CreatedAt:   now,
		}
		raised = true
	case alert.IsManuallyResolved():
	case alert.Resolved:
		alert.Resolved = false
		alert.ResolvedAt = nil
		alert.ResolvedBy = ""
		alert.ActionTaken = entity.AlertActionNone
		raised = true
	default:
		raised = alert.Severity != severity
	}
	alert.LotNumber = lot.LotNumber
	alert.DaysRemaining = days
	alert.Severity = severity
	alert.UpdatedAt = now
	if err := repos.Alerts.Upsert(ctx, alert); err != nil {
		return nil, false, err
	}
	return alert, raised, nil
}

// ListAlerts lista alertas con filtros.
func (e *Engine) ListAlerts(ctx context.Context, filter entity.AlertFilter) ([]*entity.ExpiryAlert, int, error) {
	if filter.CompanyID == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return e.deps.Repos.Alerts.List(ctx, filter)
}

// ResolveAlert registra la acción tomada. Solo cambia la alerta; el lote no se modifica.
func (e *Engine) ResolveAlert(ctx context.Context, companyID, actorID, alertID, action string) (*entity.ExpiryAlert, error) {
	if companyID == "" || alertID == "" || !entity.IsValidAlertAction(action) {
		return nil, domain.ErrInvalidInput
	}
	var alert *entity.ExpiryAlert
	err := e.deps.WithRetry(ctx, "resolve_alert", func() error {
		return e.deps.RunTx(ctx, func(repos ports.Repositories) error {
			var err error
			alert, err = repos.Alerts.GetByID(ctx, companyID, alertID)
			if err != nil {
				return err
			}
			if alert == nil {
				return domain.ErrNotFound
			}
			now := e.deps.Clock.Now()
			alert.ActionTaken = action
			alert.Resolved = true
			alert.ResolvedBy = actorID
			alert.ResolvedAt = &now
			alert.UpdatedAt = now
			return repos.Alerts.Upsert(ctx, alert)
		})
	})
	if err != nil {
		return nil, err
	}
	e.deps.Publish(ctx, []ports.Event{inventory.AlertEvent(ports.EventAlertResolved, alert, alert.UpdatedAt)})
	e.log().Info().Str("company_id", companyID).Str("alert_id", alertID).Str("action", action).Msg("alerta resuelta")
	return alert, nil
}

func (e *Engine) log() *zerolog.Logger {
	return &e.deps.Log
}
