package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rahmatagung/user-management/internal/auth"
	userDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentialsByEmail(ctx context.Context, email string) (string, int64, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash").
		Where("email = ?", email).
		First(&row).Error
	if err != nil {
		return "", 0, err
	}
	return row.PasswordHash, row.ID, nil
}

func (r *AuthRepository) GetUserWithRole(ctx context.Context, userID int64) (*auth.User, error) {
	var row struct {
		ID       int64
		Username string
		Email    string
		FullName string
		RoleID   int64
		RoleName string
		IsActive bool
	}

	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.email, users.full_name, users.role_id, roles.name AS role_name, users.is_active").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id = ?", userID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}

	return &auth.User{
		ID:       row.ID,
		Username: row.Username,
		Email:    row.Email,
		FullName: row.FullName,
		RoleID:   row.RoleID,
		RoleName: row.RoleName,
		IsActive: row.IsActive,
	}, nil
}

func (r *AuthRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("last_login", at).Error
}
