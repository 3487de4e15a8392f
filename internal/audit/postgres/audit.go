package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rahmatagung/user-management/internal/audit"
	auditDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// WithTx returns a repository bound to the given transaction so trail rows
// commit or roll back together with the change they describe.
func (r *AuditRepository) WithTx(tx *gorm.DB) *AuditRepository {
	return &AuditRepository{db: tx}
}

func (r *AuditRepository) AppendRoleChange(ctx context.Context, entry audit.RoleChange) error {
	row := auditDatamodel.UserRoleChangeLog{
		UserID:          entry.UserID,
		PreviousRoleID:  entry.PreviousRoleID,
		NewRoleID:       entry.NewRoleID,
		ChangedByUserID: entry.ChangedByUserID,
		Reason:          entry.Reason,
		CreatedAt:       time.Now(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AuditRepository) AppendPasswordChange(ctx context.Context, entry audit.PasswordChange) error {
	row := auditDatamodel.PasswordChangeLog{
		UserID:               entry.UserID,
		ChangedByUserID:      entry.ChangedByUserID,
		ChangeType:           entry.ChangeType,
		IPAddress:            entry.IPAddress,
		UserAgent:            entry.UserAgent,
		PreviousPasswordHash: entry.PreviousPasswordHash,
		CreatedAt:            time.Now(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AuditRepository) AppendPasswordHistory(ctx context.Context, userID int64, passwordHash string) error {
	row := auditDatamodel.PasswordHistory{
		UserID:       userID,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// GetRoleHistory returns role changes for a user, newest first, optionally
// bounded by an inclusive [from, to] range.
func (r *AuditRepository) GetRoleHistory(ctx context.Context, userID int64, from, to *time.Time) ([]audit.RoleHistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Table("user_role_change_logs AS l").
		Select(`l.id, l.user_id, l.previous_role_id, prev.name AS previous_role_name,
			l.new_role_id, next.name AS new_role_name,
			l.changed_by_user_id, changer.username AS changed_by_name,
			l.reason, l.created_at`).
		Joins("JOIN roles prev ON prev.id = l.previous_role_id").
		Joins("JOIN roles next ON next.id = l.new_role_id").
		Joins("LEFT JOIN users changer ON changer.id = l.changed_by_user_id").
		Where("l.user_id = ?", userID).
		Order("l.created_at DESC")

	if from != nil {
		query = query.Where("l.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("l.created_at <= ?", *to)
	}

	var entries []audit.RoleHistoryEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AuditRepository) GetRecentPasswordHashes(ctx context.Context, userID int64, limit int) ([]string, error) {
	var hashes []string
	err := r.db.WithContext(ctx).
		Model(&auditDatamodel.PasswordHistory{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("password_hash", &hashes).Error
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

func (r *AuditRepository) DeleteRoleChangesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&auditDatamodel.UserRoleChangeLog{})
	return result.RowsAffected, result.Error
}

func (r *AuditRepository) DeletePasswordChangesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&auditDatamodel.PasswordChangeLog{})
	return result.RowsAffected, result.Error
}

// TrimPasswordHistory keeps the newest N history rows per user and deletes
// the rest.
func (r *AuditRepository) TrimPasswordHistory(ctx context.Context, keep int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM password_histories
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id,
					ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC) AS rn
				FROM password_histories
			) ranked
			WHERE ranked.rn <= ?
		)`, keep)
	return result.RowsAffected, result.Error
}
