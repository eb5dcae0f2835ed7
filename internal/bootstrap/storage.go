// Package bootstrap arma la infraestructura compartida por los ejecutables (API y barrido por lotes).
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/internal/infrastructure/catalog"
	"github.com/jhoicas/lotes-api/internal/infrastructure/events"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
	"github.com/jhoicas/lotes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lotes-api/pkg/config"
)

// Storage puertos de persistencia según APP_STORAGE.
type Storage struct {
	Tx         ports.TxRunner
	Repos      ports.Repositories
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Stats      repository.StatsRepository
	Pool       *pgxpool.Pool // nil en memoria

	closers []func()
}

// Close libera las conexiones abiertas.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStorage abre PostgreSQL (aplicando migraciones si DB_MIGRATE) o el almacenamiento en memoria.
func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	if cfg.App.Storage == "memory" {
		store := memory.NewStore()
		if cfg.App.CatalogFile != "" {
			f, err := catalog.Load(cfg.App.CatalogFile)
			if err != nil {
				return nil, err
			}
			f.Apply(store)
			log.Info().Int("products", len(f.Products)).Int("warehouses", len(f.Warehouses)).Msg("catálogo cargado en memoria")
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Storage{
			Tx:         store,
			Repos:      store.Repositories(),
			Products:   store.Products(),
			Warehouses: store.Warehouses(),
			Stats:      store.Stats(),
		}, nil
	}

	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			return nil, fmt.Errorf("migraciones: %w", err)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &Storage{
		Tx:         postgres.NewTxRunner(pool, cfg.Engine.LockTimeout),
		Repos:      postgres.NewRepositories(pool),
		Products:   postgres.NewProductRepository(pool),
		Warehouses: postgres.NewWarehouseRepository(pool),
		Stats:      postgres.NewStatsRepository(pool),
		Pool:       pool,
		closers:    []func(){pool.Close},
	}, nil
}

// Publisher devuelve el publicador Kafka si hay brokers configurados; si no, uno que solo registra.
// El segundo valor cierra el publicador.
func Publisher(cfg *config.Config, log zerolog.Logger) (ports.EventPublisher, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NewLogPublisher(log), func() {}
	}
	pub := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.Kafka.Brokers, TopicPrefix: cfg.Kafka.TopicPrefix})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("prefix", cfg.Kafka.TopicPrefix).Msg("eventos hacia Kafka")
	return pub, func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador Kafka")
		}
	}
}

// EngineDeps dependencias comunes de los casos de uso del motor.
func EngineDeps(cfg *config.Config, st *Storage, pub ports.EventPublisher, metrics ports.EngineMetrics, log zerolog.Logger) inventory.Deps {
	return inventory.Deps{
		Tx:        st.Tx,
		Repos:     st.Repos,
		Catalog:   inventory.Catalog{Products: st.Products, Warehouses: st.Warehouses},
		Clock:     ports.SystemClock{},
		Publisher: pub,
		Metrics:   metrics,
		Log:       log,
		Options: inventory.Options{
			TxTimeout:       cfg.Engine.TxTimeout,
			ConflictRetries: cfg.Engine.ConflictRetries,
			HoldTTL:         cfg.Engine.HoldTTL,
		},
	}
}
