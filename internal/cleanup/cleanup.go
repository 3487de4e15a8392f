// Package cleanup hosts the scheduled maintenance jobs: audit log retention,
// password history trimming, stale password log purging and inactive account
// deactivation. Every job is idempotent; running it twice in a row is safe.
package cleanup

import (
	"context"
	"time"
)

// RepositoryAPI is the storage surface the jobs run against.
type RepositoryAPI interface {
	DeleteRoleChangesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeletePasswordChangesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	TrimPasswordHistory(ctx context.Context, keep int) (int64, error)
	DeactivateUsersInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// JobResult reports one finished run for logging and the status endpoint.
type JobResult struct {
	Job          string    `json:"job"`
	RowsAffected int64     `json:"rows_affected"`
	RanAt        time.Time `json:"ran_at"`
	Duration     string    `json:"duration"`
	Error        string    `json:"error,omitempty"`
}
