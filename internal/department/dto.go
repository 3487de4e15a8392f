package department

import (
	"github.com/rahmatagung/user-management/internal/core/common/validation"
)

type CreateDepartmentDTO struct {
	Name               string `json:"name"`
	Code               string `json:"code"`
	Description        string `json:"description"`
	ParentDepartmentID *int64 `json:"parent_department_id"`
}

func (d CreateDepartmentDTO) Validate() error {
	if err := validation.NewValidator().
		Field("name", d.Name).Required().MaxLength(100).
		Field("code", d.Code).Required().MaxLength(20).
		Field("description", d.Description).MaxLength(500).
		Validate(); err != nil {
		return err
	}
	return nil
}
