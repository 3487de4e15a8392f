// Package audit records who changed what on user accounts. Role and password
// changes are appended inside the same transaction as the change itself, so a
// committed change always has its trail row.
package audit

import (
	"context"
	"time"
)

// Password change types recorded in the trail.
const (
	ChangeTypeUserInitiated = "user_change"
	ChangeTypeAdminReset    = "admin_reset"
)

type RoleChange struct {
	UserID          int64
	PreviousRoleID  int64
	NewRoleID       int64
	ChangedByUserID int64
	Reason          string
}

type PasswordChange struct {
	UserID               int64
	ChangedByUserID      int64
	ChangeType           string
	IPAddress            string
	UserAgent            string
	PreviousPasswordHash string
}

// RoleHistoryEntry is the read model for the role history endpoint. Role IDs
// are resolved to names so consumers do not need a second lookup.
type RoleHistoryEntry struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	PreviousRoleID   int64     `json:"previous_role_id"`
	PreviousRoleName string    `json:"previous_role_name"`
	NewRoleID        int64     `json:"new_role_id"`
	NewRoleName      string    `json:"new_role_name"`
	ChangedByUserID  int64     `json:"changed_by_user_id"`
	ChangedByName    string    `json:"changed_by_name"`
	Reason           string    `json:"reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type RepositoryAPI interface {
	AppendRoleChange(ctx context.Context, entry RoleChange) error
	AppendPasswordChange(ctx context.Context, entry PasswordChange) error
	AppendPasswordHistory(ctx context.Context, userID int64, passwordHash string) error

	GetRoleHistory(ctx context.Context, userID int64, from, to *time.Time) ([]RoleHistoryEntry, error)
	GetRecentPasswordHashes(ctx context.Context, userID int64, limit int) ([]string, error)

	DeleteRoleChangesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeletePasswordChangesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	TrimPasswordHistory(ctx context.Context, keep int) (int64, error)
}
