package department

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	internalErrors "github.com/rahmatagung/user-management/internal"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error)
	GetAll(ctx context.Context, activeOnly bool) ([]Department, error)
	GetHierarchy(ctx context.Context, activeOnly bool) ([]*Node, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a department. Codes are stored uppercase and must be unique;
// a parent, when given, must already exist.
func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(dto.Code))

	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, internalErrors.NewInternalError("failed to check department code", err)
	}
	if existing != nil {
		return nil, internalErrors.NewConflictError(
			"A department with this code already exists",
			internalErrors.ErrCodeDepartmentCode,
		)
	}

	if dto.ParentDepartmentID != nil {
		if _, err := s.repo.GetByID(ctx, *dto.ParentDepartmentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, internalErrors.NewValidationError(
					"Parent department does not exist",
					internalErrors.ErrCodeDepartmentNotFound,
				)
			}
			return nil, internalErrors.NewInternalError("failed to check parent department", err)
		}
	}

	dept := &Department{
		Name:               strings.TrimSpace(dto.Name),
		Code:               code,
		Description:        strings.TrimSpace(dto.Description),
		ParentDepartmentID: dto.ParentDepartmentID,
		IsActive:           true,
	}

	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, internalErrors.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", dept.ID, "code", dept.Code)
	return dept, nil
}

func (s *Service) GetAll(ctx context.Context, activeOnly bool) ([]Department, error) {
	departments, err := s.repo.GetAll(ctx, activeOnly)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to list departments", err)
	}
	return departments, nil
}

func (s *Service) GetHierarchy(ctx context.Context, activeOnly bool) ([]*Node, error) {
	departments, err := s.repo.GetAll(ctx, activeOnly)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to list departments", err)
	}
	return BuildTree(departments), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Department, error) {
	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internalErrors.ErrDepartmentNotFound
		}
		return nil, internalErrors.NewInternalError("failed to get department", err)
	}
	return dept, nil
}
