package userdepartment

import (
	"github.com/rahmatagung/user-management/internal/core/common/validation"
)

// AssignDepartmentsDTO replaces the user's whole membership set. When
// PrimaryDepartmentID is omitted the department with the lowest ID in the
// set becomes primary.
type AssignDepartmentsDTO struct {
	DepartmentIDs       []int64 `json:"department_ids"`
	PrimaryDepartmentID *int64  `json:"primary_department_id"`
}

func (d AssignDepartmentsDTO) Validate() error {
	if err := validation.NewValidator().
		Field("department_ids", d.DepartmentIDs).Required().NoDuplicates().
		Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateDepartmentsDTO patches the membership set. Add and remove lists must
// be disjoint; adding an existing membership is a no-op.
type UpdateDepartmentsDTO struct {
	AddDepartmentIDs    []int64 `json:"add_department_ids"`
	RemoveDepartmentIDs []int64 `json:"remove_department_ids"`
	PrimaryDepartmentID *int64  `json:"primary_department_id"`
}

func (d UpdateDepartmentsDTO) Validate() error {
	if err := validation.NewValidator().
		Field("add_department_ids", d.AddDepartmentIDs).NoDuplicates().
		Field("remove_department_ids", d.RemoveDepartmentIDs).NoDuplicates().
		Validate(); err != nil {
		return err
	}
	return nil
}

type SetPrimaryDTO struct {
	DepartmentID int64 `json:"department_id"`
}

func (d SetPrimaryDTO) Validate() error {
	if err := validation.NewValidator().
		Field("department_id", d.DepartmentID).Required().
		Validate(); err != nil {
		return err
	}
	return nil
}
