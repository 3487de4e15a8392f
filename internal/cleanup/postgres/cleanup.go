package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	auditPostgres "github.com/rahmatagung/user-management/internal/audit/postgres"
	userDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/user"
)

// CleanupRepository composes the audit retention deletes with the inactive
// account sweep.
type CleanupRepository struct {
	*auditPostgres.AuditRepository
	db *gorm.DB
}

func NewCleanupRepository(db *gorm.DB) *CleanupRepository {
	return &CleanupRepository{
		AuditRepository: auditPostgres.NewAuditRepository(db),
		db:              db,
	}
}

// DeactivateUsersInactiveSince flips is_active off for accounts whose last
// sign-in predates the cutoff. Accounts that never signed in are left alone;
// they may be freshly provisioned.
func (r *CleanupRepository) DeactivateUsersInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("is_active = ? AND last_login IS NOT NULL AND last_login < ?", true, cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
