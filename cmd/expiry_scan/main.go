// expiry_scan ejecuta una sola pasada del barrido de vencimientos y de la liberación de reservas
// vencidas, para programarla desde cron o un job de Kubernetes en lugar del planificador interno.
//
// Uso: go run ./cmd/expiry_scan
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/lotes-api/internal/application/expiry"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/bootstrap"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-expiry-scan"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	publisher, closePublisher := bootstrap.Publisher(cfg, log.Component("events"))
	defer closePublisher()

	deps := bootstrap.EngineDeps(cfg, storage, publisher, ports.NoopMetrics{}, log.Component("engine"))
	engine := expiry.NewEngine(deps)
	reservations := inventory.NewReservationUseCase(deps)

	res, scanErr := engine.ScanAll(ctx)
	if res != nil {
		log.Info().
			Int("companies", res.Companies).
			Int("lots", res.ScannedLots).
			Int("expired", res.ExpiredLots).
			Int("alerts", res.AlertsUpserted).
			Int("resolved", res.AlertsResolved).
			Msg("barrido completado")
	}
	released, sweepErr := reservations.ReleaseExpiredHolds(ctx)
	if sweepErr == nil {
		log.Info().Int("released", released).Msg("reservas vencidas liberadas")
	}

	if scanErr != nil || sweepErr != nil {
		log.Error().AnErr("scan", scanErr).AnErr("sweep", sweepErr).Msg("barrido con errores")
		closePublisher()
		storage.Close()
		os.Exit(1)
	}
}
