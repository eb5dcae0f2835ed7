package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// AddProduct registra un producto del catálogo.
func (s *Store) AddProduct(p *entity.Product) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(w *entity.Warehouse) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	cp := *w
	s.warehouses[w.ID] = &cp
}

// Products repositorio de lectura del catálogo.
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

// Warehouses repositorio de lectura de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseRepo{s} }

// Stats repositorio de agregados.
func (s *Store) Stats() repository.StatsRepository { return statsRepo{s} }

type productRepo struct{ s *Store }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.catalogMu.RLock()
	defer r.s.catalogMu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type warehouseRepo struct{ s *Store }

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.catalogMu.RLock()
	defer r.s.catalogMu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

type statsRepo struct{ s *Store }

func (r statsRepo) GetStats(_ context.Context, companyID string) (*repository.InventoryStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := &repository.InventoryStats{TotalStockValue: decimal.Zero}
	for _, l := range r.s.st.lots {
		if l.CompanyID != companyID {
			continue
		}
		out.TotalLots++
		switch l.Status {
		case entity.LotStatusActive:
			out.ActiveLots++
			out.TotalStockValue = out.TotalStockValue.Add(l.StockValue())
		case entity.LotStatusQuarantine:
			out.QuarantineLots++
		case entity.LotStatusExpired:
			out.ExpiredLots++
		case entity.LotStatusRecalled:
			out.RecalledLots++
		}
	}
	for _, a := range r.s.st.alerts {
		if a.CompanyID != companyID || a.Resolved {
			continue
		}
		switch a.Severity {
		case entity.AlertSeverityCritical:
			out.CriticalAlerts++
		case entity.AlertSeverityWarning:
			out.WarningAlerts++
		}
	}
	return out, nil
}
