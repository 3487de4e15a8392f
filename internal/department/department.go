package department

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("department not found")
	ErrCodeExists     = errors.New("department code already exists")
	ErrParentNotFound = errors.New("parent department not found")
)

type Department struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Code               string    `json:"code"`
	Description        string    `json:"description,omitempty"`
	ParentDepartmentID *int64    `json:"parent_department_id,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Node is a department with its children attached, used by the hierarchy view.
type Node struct {
	Department
	Children []*Node `json:"children"`
}

type RepositoryAPI interface {
	Create(ctx context.Context, dept *Department) error
	GetAll(ctx context.Context, activeOnly bool) ([]Department, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
	GetByCode(ctx context.Context, code string) (*Department, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Department, error)
}

// BuildTree arranges a flat department list into root nodes with nested
// children. Departments whose parent is missing from the list become roots.
func BuildTree(departments []Department) []*Node {
	nodes := make(map[int64]*Node, len(departments))
	for i := range departments {
		nodes[departments[i].ID] = &Node{
			Department: departments[i],
			Children:   []*Node{},
		}
	}

	var roots []*Node
	for _, dept := range departments {
		node := nodes[dept.ID]
		if dept.ParentDepartmentID != nil {
			if parent, ok := nodes[*dept.ParentDepartmentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
