package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// InventoryStats agregados del motor de lotes para una empresa.
type InventoryStats struct {
	TotalLots       int             `db:"total_lots"`
	ActiveLots      int             `db:"active_lots"`
	QuarantineLots  int             `db:"quarantine_lots"`
	ExpiredLots     int             `db:"expired_lots"`
	RecalledLots    int             `db:"recalled_lots"`
	CriticalAlerts  int             `db:"critical_alerts"`
	WarningAlerts   int             `db:"warning_alerts"`
	TotalStockValue decimal.Decimal `db:"total_stock_value"` // Σ cantidad * costo sobre lotes activos
}

// StatsRepository puerto de lectura de agregados.
type StatsRepository interface {
	GetStats(ctx context.Context, companyID string) (*InventoryStats, error)
}
