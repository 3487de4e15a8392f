package postgres

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	departmentDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/department"
	userDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/user"
	"github.com/rahmatagung/user-management/internal/userdepartment"
)

const (
	maxTxRetries   = 3
	retryBaseDelay = 50 * time.Millisecond
)

type UserDepartmentRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserDepartmentRepository(db *gorm.DB, logger *slog.Logger) *UserDepartmentRepository {
	return &UserDepartmentRepository{db: db, logger: logger}
}

func (r *UserDepartmentRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *UserDepartmentRepository) GetMemberships(ctx context.Context, userID int64) ([]userdepartment.Membership, error) {
	var memberships []userdepartment.Membership
	err := r.db.WithContext(ctx).
		Table("user_departments AS ud").
		Select(`ud.department_id, d.name AS department_name, d.code AS department_code,
			ud.is_primary, ud.assigned_by_user_id, ud.assigned_at`).
		Joins("JOIN departments d ON d.id = ud.department_id").
		Where("ud.user_id = ?", userID).
		Order("ud.is_primary DESC, d.name ASC").
		Scan(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ReplaceMemberships swaps the full membership set in one transaction.
// Concurrent replacements for the same user can collide on the composite
// unique index, so the transaction is retried a few times before giving up.
func (r *UserDepartmentRepository) ReplaceMemberships(ctx context.Context, userID int64, memberships []userdepartment.Membership) error {
	return r.withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", userID).
				Delete(&departmentDatamodel.UserDepartment{}).Error; err != nil {
				return err
			}

			for _, m := range memberships {
				row := departmentDatamodel.UserDepartment{
					UserID:           userID,
					DepartmentID:     m.DepartmentID,
					IsPrimary:        m.IsPrimary,
					AssignedByUserID: m.AssignedByUserID,
					AssignedAt:       m.AssignedAt,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (r *UserDepartmentRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&departmentDatamodel.UserDepartment{})
	return result.RowsAffected, result.Error
}

// SetPrimary moves the primary flag to an existing membership. Both flag
// writes happen in the same transaction so the user never has zero or two
// primaries.
func (r *UserDepartmentRepository) SetPrimary(ctx context.Context, userID, departmentID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&departmentDatamodel.UserDepartment{}).
			Where("user_id = ? AND department_id = ?", userID, departmentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return userdepartment.ErrNotMember
		}

		if err := tx.Model(&departmentDatamodel.UserDepartment{}).
			Where("user_id = ? AND is_primary = ?", userID, true).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		return tx.Model(&departmentDatamodel.UserDepartment{}).
			Where("user_id = ? AND department_id = ?", userID, departmentID).
			Update("is_primary", true).Error
	})
}

func (r *UserDepartmentRepository) HasMembership(ctx context.Context, userID, departmentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&departmentDatamodel.UserDepartment{}).
		Where("user_id = ? AND department_id = ?", userID, departmentID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserDepartmentRepository) Stats(ctx context.Context) ([]userdepartment.DepartmentStats, error) {
	var stats []userdepartment.DepartmentStats
	err := r.db.WithContext(ctx).
		Table("departments AS d").
		Select(`d.id AS department_id, d.name AS department_name, d.code AS department_code,
			COUNT(ud.id) AS member_count,
			COALESCE(SUM(CASE WHEN ud.is_primary THEN 1 ELSE 0 END), 0) AS primary_count`).
		Joins("LEFT JOIN user_departments ud ON ud.department_id = d.id").
		Where("d.is_active = ?", true).
		Group("d.id, d.name, d.code").
		Order("d.name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *UserDepartmentRepository) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBaseDelay * time.Duration(attempt))
		}
		if err = fn(); err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		r.logger.Warn("retrying membership transaction", "attempt", attempt+1, "error", err)
	}
	return err
}

// isRetryable matches serialization failures and unique collisions caused by
// a concurrent replacement of the same membership set.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
