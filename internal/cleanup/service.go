package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rahmatagung/user-management/internal"
)

// Job names, also used as scheduler keys.
const (
	JobAuditLogs       = "audit_log_retention"
	JobPasswordHistory = "password_history_trim"
	JobSessions        = "session_cleanup"
	JobInactiveUsers   = "inactive_user_deactivation"
)

type Service struct {
	repo   RepositoryAPI
	cfg    internal.CleanupConfig
	logger *slog.Logger

	mu      sync.RWMutex
	lastRun map[string]JobResult
}

func NewService(repo RepositoryAPI, cfg internal.CleanupConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cfg:     cfg.WithDefaults(),
		logger:  logger,
		lastRun: make(map[string]JobResult),
	}
}

// CleanupAuditLogs removes role change and password change trail rows older
// than the retention window.
func (s *Service) CleanupAuditLogs(ctx context.Context) JobResult {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.AuditLogRetentionDays)
	return s.run(JobAuditLogs, func() (int64, error) {
		roleRows, err := s.repo.DeleteRoleChangesBefore(ctx, cutoff)
		if err != nil {
			return roleRows, err
		}
		passwordRows, err := s.repo.DeletePasswordChangesBefore(ctx, cutoff)
		return roleRows + passwordRows, err
	})
}

// CleanupPasswordHistory trims per-user password history down to the
// configured depth.
func (s *Service) CleanupPasswordHistory(ctx context.Context) JobResult {
	return s.run(JobPasswordHistory, func() (int64, error) {
		return s.repo.TrimPasswordHistory(ctx, s.cfg.PasswordHistoryKeep)
	})
}

// CleanupSessions purges password change logs past the longer session
// retention. Sessions themselves are stateless JWTs, so the log purge is all
// this job has left to do.
func (s *Service) CleanupSessions(ctx context.Context) JobResult {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.PasswordLogRetentionDays)
	return s.run(JobSessions, func() (int64, error) {
		return s.repo.DeletePasswordChangesBefore(ctx, cutoff)
	})
}

// CleanupInactiveUsers deactivates accounts that have not signed in within
// the threshold.
func (s *Service) CleanupInactiveUsers(ctx context.Context) JobResult {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.InactiveUserThresholdDays)
	return s.run(JobInactiveUsers, func() (int64, error) {
		return s.repo.DeactivateUsersInactiveSince(ctx, cutoff)
	})
}

// RunAll executes every job once, in order. Failures are recorded but do not
// stop the remaining jobs.
func (s *Service) RunAll(ctx context.Context) []JobResult {
	return []JobResult{
		s.CleanupAuditLogs(ctx),
		s.CleanupPasswordHistory(ctx),
		s.CleanupSessions(ctx),
		s.CleanupInactiveUsers(ctx),
	}
}

// LastResults returns the most recent result per job.
func (s *Service) LastResults() []JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobResult, 0, len(s.lastRun))
	for _, result := range s.lastRun {
		out = append(out, result)
	}
	return out
}

func (s *Service) run(job string, fn func() (int64, error)) JobResult {
	start := time.Now()
	rows, err := fn()

	result := JobResult{
		Job:          job,
		RowsAffected: rows,
		RanAt:        start,
		Duration:     time.Since(start).String(),
	}

	if err != nil {
		result.Error = err.Error()
		s.logger.Error("cleanup job failed", "job", job, "error", err)
	} else {
		s.logger.Info("cleanup job finished", "job", job, "rows_affected", rows, "duration", result.Duration)
	}

	s.mu.Lock()
	s.lastRun[job] = result
	s.mu.Unlock()

	return result
}
