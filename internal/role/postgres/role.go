package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/user"
	"github.com/rahmatagung/user-management/internal/role"
	"gorm.io/gorm"
)

// RoleRepository implements the role.Repository interface using GORM
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.Repository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetAll(ctx context.Context) ([]*role.Role, error) {
	var rows []userDatamodel.Role
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	roles := make([]*role.Role, 0, len(rows))
	for i := range rows {
		roles = append(roles, fromDataModel(&rows[i]))
	}
	return roles, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*role.Role, error) {
	var row userDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, role.ErrNotFound
		}
		return nil, err
	}
	return fromDataModel(&row), nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*role.Role, error) {
	var row userDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, role.ErrNotFound
		}
		return nil, err
	}
	return fromDataModel(&row), nil
}

func fromDataModel(row *userDatamodel.Role) *role.Role {
	return &role.Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
	}
}
