package department

import "time"

type Department struct {
	ID                 int64     `gorm:"primaryKey"`
	Name               string    `gorm:"column:name;not null"`
	Code               string    `gorm:"column:code;uniqueIndex;not null"`
	Description        string    `gorm:"column:description"`
	ParentDepartmentID *int64    `gorm:"column:parent_department_id"`
	IsActive           bool      `gorm:"column:is_active;default:true"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// UserDepartment is the membership join row. Uniqueness per (user, department)
// is backed by a composite index; the single-primary rule is application
// enforced.
type UserDepartment struct {
	ID               int64     `gorm:"primaryKey"`
	UserID           int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_department"`
	DepartmentID     int64     `gorm:"column:department_id;not null;uniqueIndex:idx_user_department"`
	IsPrimary        bool      `gorm:"column:is_primary;default:false"`
	AssignedByUserID int64     `gorm:"column:assigned_by_user_id;not null"`
	AssignedAt       time.Time `gorm:"column:assigned_at"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (UserDepartment) TableName() string {
	return "user_departments"
}
