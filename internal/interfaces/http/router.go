package http

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/expiry"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/settings"
)

// Pinger verificación de dependencias para /health (lo implementa *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lots         *inventory.LotUseCase
	Planner      *inventory.PlannerUseCase
	Reservations *inventory.ReservationUseCase
	Sales        *inventory.SaleUseCase
	Expiry       *expiry.Engine
	Settings     *settings.UseCase
	JWTSecret    string
	ServiceName  string
	Log          zerolog.Logger

	// Opcionales.
	DB             Pinger
	HTTPMetrics    HTTPObserver
	MetricsHandler http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.HTTPMetrics != nil {
		app.Use(MetricsMiddleware(deps.HTTPMetrics))
	}

	app.Get("/health", healthHandler(deps))
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	warehouse := RequireRole(RoleAdmin, RoleBodeguero)
	admin := RequireRole(RoleAdmin)

	// Lotes y kardex
	lotHandler := NewLotHandler(deps.Lots, deps.Log)
	lots := api.Group("/lots")
	lots.Get("/", anyRole, lotHandler.List)
	lots.Post("/", warehouse, lotHandler.Create)
	lots.Get("/:id", anyRole, lotHandler.GetByID)
	lots.Get("/:id/movements", anyRole, lotHandler.Movements)
	lots.Get("/:id/reconciliation", anyRole, lotHandler.Reconciliation)
	lots.Post("/:id/adjustments", warehouse, lotHandler.Adjust)
	lots.Post("/:id/counts", warehouse, lotHandler.Count)
	lots.Post("/:id/transfer", warehouse, lotHandler.Transfer)
	lots.Post("/:id/status", warehouse, lotHandler.ChangeStatus)
	api.Post("/receipts", warehouse, lotHandler.Receive)
	api.Get("/stats", anyRole, lotHandler.Stats)

	// Asignación y reservas
	allocHandler := NewAllocationHandler(deps.Planner, deps.Reservations, deps.Log)
	api.Post("/allocations/plan", anyRole, allocHandler.Plan)
	reservations := api.Group("/reservations")
	reservations.Post("/", anyRole, allocHandler.Reserve)
	reservations.Get("/:ref", anyRole, allocHandler.GetReservations)
	reservations.Post("/:ref/commit", warehouse, allocHandler.Commit)
	reservations.Post("/:ref/release", anyRole, allocHandler.Release)

	// Eventos de venta
	saleHandler := NewSaleHandler(deps.Sales, deps.Log)
	sales := api.Group("/sales")
	sales.Post("/", anyRole, saleHandler.Handle)
	sales.Post("/:ref/confirm", warehouse, saleHandler.Confirm)
	sales.Post("/:ref/cancel", anyRole, saleHandler.Cancel)
	sales.Post("/:ref/return", anyRole, saleHandler.Return)

	// Alertas de vencimiento
	alertHandler := NewAlertHandler(deps.Expiry, deps.Log)
	alerts := api.Group("/alerts")
	alerts.Get("/", anyRole, alertHandler.List)
	alerts.Post("/scan", admin, alertHandler.Scan)
	alerts.Post("/:id/resolve", warehouse, alertHandler.Resolve)

	// Política
	settingsHandler := NewSettingsHandler(deps.Settings, deps.Log)
	api.Get("/settings", anyRole, settingsHandler.Get)
	api.Put("/settings", admin, settingsHandler.Update)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB != nil {
			if err := deps.DB.Ping(c.Context()); err != nil {
				deps.Log.Warn().Err(err).Msg("health: base de datos no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	}
}
