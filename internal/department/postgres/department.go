package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rahmatagung/user-management/internal/department"
	departmentDatamodel "github.com/rahmatagung/user-management/internal/core/datamodel/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, dept *department.Department) error {
	row := departmentDatamodel.Department{
		Name:               dept.Name,
		Code:               dept.Code,
		Description:        dept.Description,
		ParentDepartmentID: dept.ParentDepartmentID,
		IsActive:           dept.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}

	dept.ID = row.ID
	dept.CreatedAt = row.CreatedAt
	dept.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *DepartmentRepository) GetAll(ctx context.Context, activeOnly bool) ([]department.Department, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []departmentDatamodel.Department
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	departments := make([]department.Department, len(rows))
	for i, row := range rows {
		departments[i] = toDomain(row)
	}
	return departments, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	var row departmentDatamodel.Department
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	dept := toDomain(row)
	return &dept, nil
}

func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*department.Department, error) {
	var row departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	dept := toDomain(row)
	return &dept, nil
}

func (r *DepartmentRepository) GetByIDs(ctx context.Context, ids []int64) ([]department.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	departments := make([]department.Department, len(rows))
	for i, row := range rows {
		departments[i] = toDomain(row)
	}
	return departments, nil
}

func toDomain(row departmentDatamodel.Department) department.Department {
	return department.Department{
		ID:                 row.ID,
		Name:               row.Name,
		Code:               row.Code,
		Description:        row.Description,
		ParentDepartmentID: row.ParentDepartmentID,
		IsActive:           row.IsActive,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
