package expiry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HoldSweeper libera reservas held vencidas.
type HoldSweeper interface {
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}

// SchedulerConfig intervalos del barrido en segundo plano.
type SchedulerConfig struct {
	ScanInterval  time.Duration
	SweepInterval time.Duration // 0 = sin barrido de reservas
	RunOnStart    bool
}

// Scheduler ejecuta periódicamente el barrido de vencimientos de todas las empresas
// y la liberación de reservas vencidas.
type Scheduler struct {
	config  SchedulerConfig
	engine  *Engine
	sweeper HoldSweeper
	log     zerolog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler construye el planificador. sweeper puede ser nil.
func NewScheduler(config SchedulerConfig, engine *Engine, sweeper HoldSweeper, log zerolog.Logger) *Scheduler {
	if config.ScanInterval <= 0 {
		config.ScanInterval = 24 * time.Hour
	}
	return &Scheduler{config: config, engine: engine, sweeper: sweeper, log: log}
}

// Start lanza los ciclos en segundo plano. Llamarlo de nuevo mientras corre no tiene efecto.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx, s.config.ScanInterval, s.config.RunOnStart, s.scanOnce)
	if s.sweeper != nil && s.config.SweepInterval > 0 {
		s.wg.Add(1)
		go s.loop(ctx, s.config.SweepInterval, false, s.sweepOnce)
	}
	s.log.Info().Dur("scan_interval", s.config.ScanInterval).Dur("sweep_interval", s.config.SweepInterval).
		Msg("planificador de vencimientos iniciado")
}

// Stop detiene los ciclos y espera a que termine la ejecución en curso o a que venza ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info().Msg("planificador de vencimientos detenido")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, runNow bool, run func(context.Context)) {
	defer s.wg.Done()
	if runNow {
		run(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (s *Scheduler) scanOnce(ctx context.Context) {
	res, err := s.engine.ScanAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("barrido de vencimientos con errores")
	}
	if res != nil {
		s.log.Info().Int("companies", res.Companies).Int("expired", res.ExpiredLots).
			Int("alerts", res.AlertsUpserted).Int("resolved", res.AlertsResolved).Msg("barrido de vencimientos completado")
	}
}

func (s *Scheduler) sweepOnce(ctx context.Context) {
	if _, err := s.sweeper.ReleaseExpiredHolds(ctx); err != nil {
		s.log.Error().Err(err).Msg("liberación de reservas vencidas fallida")
	}
}
