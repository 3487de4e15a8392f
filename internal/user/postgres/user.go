package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rahmatagung/user-management/internal/audit"
	auditDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/audit"
	userDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/user"
	"github.com/rahmatagung/user-management/internal/user"
)

const (
	maxTxRetries   = 3
	retryBaseDelay = 50 * time.Millisecond
)

type UserRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserRepository(db *gorm.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	row := userDatamodel.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		PhoneNumber:  u.PhoneNumber,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}

	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, "users.id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "users.email = ?", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, "users.username = ?", username)
}

func (r *UserRepository) GetAll(ctx context.Context, params user.ListParams) ([]user.User, int64, error) {
	query := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, roles.name AS role_name").
		Joins("JOIN roles ON roles.id = users.role_id")

	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where(
			"users.username ILIKE ? OR users.email ILIKE ? OR users.full_name ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	if params.RoleID != nil {
		query = query.Where("users.role_id = ?", *params.RoleID)
	}
	if params.IsActive != nil {
		query = query.Where("users.is_active = ?", *params.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []userRow
	err := query.
		Order("users.created_at DESC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain()
	}
	return users, total, nil
}

func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("is_active", active).Error
}

// ChangeRole writes the new role and the trail row in one transaction. A
// concurrent role change for the same user can collide, so the transaction
// is retried a few times before giving up.
func (r *UserRepository) ChangeRole(ctx context.Context, userID, newRoleID int64, entry audit.RoleChange) error {
	return r.withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&userDatamodel.User{}).
				Where("id = ?", userID).
				Update("role_id", newRoleID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return user.ErrNotFound
			}

			logRow := auditDatamodel.UserRoleChangeLog{
				UserID:          entry.UserID,
				PreviousRoleID:  entry.PreviousRoleID,
				NewRoleID:       entry.NewRoleID,
				ChangedByUserID: entry.ChangedByUserID,
				Reason:          entry.Reason,
				CreatedAt:       time.Now(),
			}
			return tx.Create(&logRow).Error
		})
	})
}

// ChangePassword updates the hash and appends both trail rows in one retried
// transaction. The change log keeps the previous hash for forensics; the
// history row records the new hash so future reuse checks see it.
func (r *UserRepository) ChangePassword(ctx context.Context, userID int64, newHash string, entry audit.PasswordChange) error {
	return r.withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&userDatamodel.User{}).
				Where("id = ?", userID).
				Update("password_hash", newHash)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return user.ErrNotFound
			}

			logRow := auditDatamodel.PasswordChangeLog{
				UserID:               entry.UserID,
				ChangedByUserID:      entry.ChangedByUserID,
				ChangeType:           entry.ChangeType,
				IPAddress:            entry.IPAddress,
				UserAgent:            entry.UserAgent,
				PreviousPasswordHash: entry.PreviousPasswordHash,
				CreatedAt:            time.Now(),
			}
			if err := tx.Create(&logRow).Error; err != nil {
				return err
			}

			historyRow := auditDatamodel.PasswordHistory{
				UserID:       entry.UserID,
				PasswordHash: newHash,
				CreatedAt:    time.Now(),
			}
			return tx.Create(&historyRow).Error
		})
	})
}

type userRow struct {
	userDatamodel.User
	RoleName string
}

func (row userRow) toDomain() user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		FullName:     row.FullName,
		PhoneNumber:  row.PhoneNumber,
		RoleID:       row.RoleID,
		RoleName:     row.RoleName,
		IsActive:     row.IsActive,
		LastLogin:    row.LastLogin,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (r *UserRepository) getOne(ctx context.Context, condition string, value interface{}) (*user.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, roles.name AS role_name").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where(condition, value).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	u := row.toDomain()
	return &u, nil
}

func (r *UserRepository) withRetry(fn func() error) error {
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
		r.logger.Warn("retrying user transaction", "attempt", attempt+1, "error", err)
	}
	return err
}

// isRetryable matches serialization failures and unique collisions caused by
// concurrent writes against the same user row.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
