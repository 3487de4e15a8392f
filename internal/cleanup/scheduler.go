package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rahmatagung/user-management/internal"
)

// Scheduler drives the cleanup jobs on their configured intervals. Each job
// runs once at start and then on its own ticker until the context is
// cancelled.
type Scheduler struct {
	service *Service
	cfg     internal.CleanupConfig
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewScheduler(service *Service, cfg internal.CleanupConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service: service,
		cfg:     cfg.WithDefaults(),
		logger:  logger,
	}
}

// Start launches one goroutine per job and returns immediately. Stop by
// cancelling the context, then Wait.
func (s *Scheduler) Start(ctx context.Context) {
	jobs := []struct {
		name     string
		interval time.Duration
		run      func(ctx context.Context) JobResult
	}{
		{JobAuditLogs, s.cfg.AuditLogInterval, s.service.CleanupAuditLogs},
		{JobPasswordHistory, s.cfg.PasswordHistoryInterval, s.service.CleanupPasswordHistory},
		{JobSessions, s.cfg.SessionInterval, s.service.CleanupSessions},
		{JobInactiveUsers, s.cfg.InactiveUserInterval, s.service.CleanupInactiveUsers},
	}

	for _, job := range jobs {
		s.wg.Add(1)
		go s.loop(ctx, job.name, job.interval, job.run)
	}

	s.logger.Info("cleanup scheduler started", "jobs", len(jobs))
}

// Wait blocks until every job loop has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, run func(ctx context.Context) JobResult) {
	defer s.wg.Done()

	run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup job loop stopped", "job", name)
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}
