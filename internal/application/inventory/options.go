package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// Options parámetros operativos del motor.
type Options struct {
	// TxTimeout tope de duración de cada transacción; al vencer se revierte completa.
	TxTimeout time.Duration
	// ConflictRetries reintentos ante ErrConcurrencyConflict (lock timeout, serialización, deadlock).
	ConflictRetries int
	// HoldTTL antigüedad máxima de una reserva held antes de liberarla automáticamente (0 = nunca).
	HoldTTL time.Duration
}

// DefaultOptions valores por defecto del motor.
func DefaultOptions() Options {
	return Options{TxTimeout: 5 * time.Second, ConflictRetries: 3, HoldTTL: 24 * time.Hour}
}

// Catalog productos y bodegas contra los que se validan lotes, planes y ventas.
type Catalog struct {
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
}

// Deps dependencias compartidas por los casos de uso del motor.
type Deps struct {
	Tx        ports.TxRunner
	Repos     ports.Repositories
	Catalog   Catalog
	Clock     ports.Clock
	Publisher ports.EventPublisher
	Metrics   ports.EngineMetrics
	Log       zerolog.Logger
	Options   Options
}

// Normalize completa las dependencias opcionales con valores por defecto.
func (d *Deps) Normalize() {
	if d.Clock == nil {
		d.Clock = ports.SystemClock{}
	}
	if d.Metrics == nil {
		d.Metrics = ports.NoopMetrics{}
	}
	if d.Options.TxTimeout <= 0 {
		d.Options.TxTimeout = DefaultOptions().TxTimeout
	}
	if d.Options.ConflictRetries < 0 {
		d.Options.ConflictRetries = 0
	}
}

// RunTx ejecuta fn en una transacción acotada por TxTimeout.
func (d *Deps) RunTx(ctx context.Context, fn func(repos ports.Repositories) error) error {
	txCtx, cancel := context.WithTimeout(ctx, d.Options.TxTimeout)
	defer cancel()
	err := d.Tx.Run(txCtx, fn)
	if err != nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return domain.ErrConcurrencyConflict
	}
	return err
}

// WithRetry repite attempt mientras falle por conflicto de concurrencia, con espera lineal.
func (d *Deps) WithRetry(ctx context.Context, op string, attempt func() error) error {
	for i := 0; ; i++ {
		err := attempt()
		if !errors.Is(err, domain.ErrConcurrencyConflict) || i >= d.Options.ConflictRetries {
			return err
		}
		d.Metrics.ConflictRetried()
		d.Log.Warn().Str("op", op).Int("attempt", i+1).Msg("conflicto de concurrencia, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * 10 * time.Millisecond):
		}
	}
}

// Publish envía eventos después del commit; un fallo solo se registra.
func (d *Deps) Publish(ctx context.Context, events []ports.Event) {
	if d.Publisher == nil || len(events) == 0 {
		return
	}
	if err := d.Publisher.Publish(ctx, events...); err != nil {
		d.Log.Error().Err(err).Int("events", len(events)).Msg("no se pudieron publicar eventos")
	}
}

// CheckCatalog verifica que el producto y la bodega existan y sean de la empresa.
func (d *Deps) CheckCatalog(ctx context.Context, companyID, productID, warehouseID string) error {
	if companyID == "" || productID == "" || warehouseID == "" {
		return domain.ErrInvalidInput
	}
	product, err := d.Catalog.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil || product.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return d.checkWarehouse(ctx, companyID, warehouseID)
}

func (d *Deps) checkWarehouse(ctx context.Context, companyID, warehouseID string) error {
	wh, err := d.Catalog.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}
