package attendance

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"salescrm.service/internal/metrics"
	"salescrm.service/internal/ports/repository"
)

// Sweeper is the safety net behind the grace timer: on every tick it puts
// offline employees on break whose last tab closed longer ago than the
// threshold, catching grace timers lost to restarts or crashes.
type Sweeper struct {
	svc       *Service
	employees repository.EmployeeRepository
	interval  time.Duration
	threshold time.Duration
}

func NewSweeper(svc *Service, employees repository.EmployeeRepository, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{svc: svc, employees: employees, interval: interval, threshold: threshold}
}

// Start blocks until ctx is cancelled, sweeping every interval.
func (s *Sweeper) Start(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Dur("threshold", s.threshold).Msg("Presence sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Presence sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	metrics.SweepRunsTotal.Inc()

	cutoff := s.svc.now().Add(-s.threshold)
	stale, err := s.employees.ListOfflineSince(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Sweep failed to list stale employees")
		return
	}

	for _, emp := range stale {
		if s.svc.startBreakIfNone(ctx, emp.ID) {
			metrics.AutoBreaksStarted.WithLabelValues("sweeper").Inc()
			log.Info().Str("employee_id", emp.ID).Msg("Stale employee moved to break")
		}
	}

	if online, err := s.employees.CountOnline(ctx); err == nil {
		metrics.OnlineEmployees.Set(float64(online))
	}
}
