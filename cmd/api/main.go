package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/lotes-api/internal/application/expiry"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/bootstrap"
	"github.com/jhoicas/lotes-api/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/lotes-api/internal/interfaces/http"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	storage, err := bootstrap.OpenStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	publisher, closePublisher := bootstrap.Publisher(cfg, log.Component("events"))
	defer closePublisher()

	promMetrics := metrics.New("lotes")
	deps := bootstrap.EngineDeps(cfg, storage, publisher, promMetrics, log.Component("engine"))

	lotUC := inventory.NewLotUseCase(deps, storage.Stats)
	plannerUC := inventory.NewPlannerUseCase(deps)
	reservationUC := inventory.NewReservationUseCase(deps)
	saleUC := inventory.NewSaleUseCase(reservationUC)
	expiryEngine := expiry.NewEngine(deps)
	settingsUC := settings.NewUseCase(storage.Repos.Settings)

	scheduler := expiry.NewScheduler(expiry.SchedulerConfig{
		ScanInterval:  cfg.Expiry.ScanInterval,
		SweepInterval: cfg.Expiry.SweepInterval,
		RunOnStart:    cfg.Expiry.ScanOnStart,
	}, expiryEngine, reservationUC, log.Component("scheduler"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere generar docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Lotes API",
		}))
	}

	routerDeps := httpRouter.RouterDeps{
		Lots:           lotUC,
		Planner:        plannerUC,
		Reservations:   reservationUC,
		Sales:          saleUC,
		Expiry:         expiryEngine,
		Settings:       settingsUC,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
		Log:            log.Component("http"),
		HTTPMetrics:    promMetrics,
		MetricsHandler: promMetrics.Handler(),
	}
	if storage.Pool != nil {
		routerDeps.DB = storage.Pool
	}
	httpRouter.Router(app, routerDeps)

	scheduler.Start(ctx)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("detener barrido de vencimientos")
	}

	log.Info().Msg("aplicación detenida")
}
