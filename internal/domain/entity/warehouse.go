package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacenan lotes (multi-bodega).
type Warehouse struct {
	ID        string    `db:"id"`
	CompanyID string    `db:"company_id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}
