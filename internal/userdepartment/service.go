package userdepartment

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	internalErrors "github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/internal/department"
)

type ServiceAPI interface {
	GetUserDepartments(ctx context.Context, userID int64) ([]Membership, error)
	AssignDepartments(ctx context.Context, userID int64, dto AssignDepartmentsDTO, assignedBy int64) ([]Membership, error)
	UpdateUserDepartments(ctx context.Context, userID int64, dto UpdateDepartmentsDTO, assignedBy int64) ([]Membership, error)
	ClearUserDepartments(ctx context.Context, userID int64) (int64, error)
	SetPrimaryDepartment(ctx context.Context, userID int64, dto SetPrimaryDTO) error
	CheckMembership(ctx context.Context, userID, departmentID int64) (bool, error)
	GetDepartmentStats(ctx context.Context) ([]DepartmentStats, error)
}

type Service struct {
	repo     RepositoryAPI
	deptRepo department.RepositoryAPI
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, deptRepo department.RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		deptRepo: deptRepo,
		logger:   logger,
	}
}

func (s *Service) GetUserDepartments(ctx context.Context, userID int64) ([]Membership, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	memberships, err := s.repo.GetMemberships(ctx, userID)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to load user departments", err)
	}
	return memberships, nil
}

// AssignDepartments replaces the user's entire membership set. Every
// requested department must exist and be active. The primary is the
// requested one when given, otherwise the lowest department ID in the set.
func (s *Service) AssignDepartments(ctx context.Context, userID int64, dto AssignDepartmentsDTO, assignedBy int64) ([]Membership, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requireActiveDepartments(ctx, dto.DepartmentIDs); err != nil {
		return nil, err
	}

	primaryID, err := resolvePrimary(dto.DepartmentIDs, dto.PrimaryDepartmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	memberships := make([]Membership, len(dto.DepartmentIDs))
	for i, deptID := range dto.DepartmentIDs {
		memberships[i] = Membership{
			DepartmentID:     deptID,
			IsPrimary:        deptID == primaryID,
			AssignedByUserID: assignedBy,
			AssignedAt:       now,
		}
	}

	if err := s.repo.ReplaceMemberships(ctx, userID, memberships); err != nil {
		return nil, internalErrors.NewInternalError("failed to assign departments", err)
	}

	s.logger.Info("departments assigned",
		"user_id", userID,
		"department_count", len(memberships),
		"primary_department_id", primaryID,
		"assigned_by", assignedBy,
	)
	return s.repo.GetMemberships(ctx, userID)
}

// UpdateUserDepartments applies an add/remove patch. The two lists must be
// disjoint; the whole request is rejected before any write when they
// overlap. Adding an existing membership is a no-op and removing requires
// current membership.
func (s *Service) UpdateUserDepartments(ctx context.Context, userID int64, dto UpdateDepartmentsDTO, assignedBy int64) ([]Membership, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if len(dto.AddDepartmentIDs) == 0 && len(dto.RemoveDepartmentIDs) == 0 && dto.PrimaryDepartmentID == nil {
		return nil, internalErrors.NewValidationError(
			"Nothing to update: provide departments to add, remove, or a new primary",
			internalErrors.ErrCodeValidationFailed,
		)
	}
	if overlaps(dto.AddDepartmentIDs, dto.RemoveDepartmentIDs) {
		return nil, internalErrors.NewValidationError(
			"A department cannot be both added and removed in the same request",
			internalErrors.ErrCodeValidationFailed,
		)
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requireActiveDepartments(ctx, dto.AddDepartmentIDs); err != nil {
		return nil, err
	}

	current, err := s.repo.GetMemberships(ctx, userID)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to load user departments", err)
	}

	final := make(map[int64]Membership, len(current))
	for _, m := range current {
		final[m.DepartmentID] = m
	}

	for _, deptID := range dto.RemoveDepartmentIDs {
		if _, ok := final[deptID]; !ok {
			return nil, internalErrors.ErrNotMember
		}
		delete(final, deptID)
	}

	now := time.Now()
	for _, deptID := range dto.AddDepartmentIDs {
		if _, ok := final[deptID]; ok {
			continue
		}
		final[deptID] = Membership{
			DepartmentID:     deptID,
			AssignedByUserID: assignedBy,
			AssignedAt:       now,
		}
	}

	finalIDs := make([]int64, 0, len(final))
	for deptID := range final {
		finalIDs = append(finalIDs, deptID)
	}

	if len(finalIDs) == 0 {
		if dto.PrimaryDepartmentID != nil {
			return nil, internalErrors.ErrNotMember
		}
		if _, err := s.repo.Clear(ctx, userID); err != nil {
			return nil, internalErrors.NewInternalError("failed to update departments", err)
		}
		return []Membership{}, nil
	}

	primaryID, err := resolveUpdatedPrimary(finalIDs, final, dto.PrimaryDepartmentID)
	if err != nil {
		return nil, err
	}

	memberships := make([]Membership, 0, len(final))
	for deptID, m := range final {
		m.IsPrimary = deptID == primaryID
		memberships = append(memberships, m)
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].DepartmentID < memberships[j].DepartmentID
	})

	if err := s.repo.ReplaceMemberships(ctx, userID, memberships); err != nil {
		return nil, internalErrors.NewInternalError("failed to update departments", err)
	}

	s.logger.Info("departments updated",
		"user_id", userID,
		"added", len(dto.AddDepartmentIDs),
		"removed", len(dto.RemoveDepartmentIDs),
		"primary_department_id", primaryID,
	)
	return s.repo.GetMemberships(ctx, userID)
}

func (s *Service) ClearUserDepartments(ctx context.Context, userID int64) (int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}

	removed, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, internalErrors.NewInternalError("failed to clear departments", err)
	}

	s.logger.Info("departments cleared", "user_id", userID, "removed", removed)
	return removed, nil
}

// SetPrimaryDepartment flips the primary flag to an existing membership.
func (s *Service) SetPrimaryDepartment(ctx context.Context, userID int64, dto SetPrimaryDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.SetPrimary(ctx, userID, dto.DepartmentID); err != nil {
		if errors.Is(err, ErrNotMember) {
			return internalErrors.ErrNotMember
		}
		return internalErrors.NewInternalError("failed to set primary department", err)
	}

	s.logger.Info("primary department changed", "user_id", userID, "department_id", dto.DepartmentID)
	return nil
}

func (s *Service) CheckMembership(ctx context.Context, userID, departmentID int64) (bool, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return false, err
	}

	isMember, err := s.repo.HasMembership(ctx, userID, departmentID)
	if err != nil {
		return false, internalErrors.NewInternalError("failed to check membership", err)
	}
	return isMember, nil
}

func (s *Service) GetDepartmentStats(ctx context.Context) ([]DepartmentStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to load department stats", err)
	}
	return stats, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return internalErrors.NewInternalError("failed to check user", err)
	}
	if !exists {
		return internalErrors.ErrUserNotFound
	}
	return nil
}

func (s *Service) requireActiveDepartments(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	departments, err := s.deptRepo.GetByIDs(ctx, ids)
	if err != nil {
		return internalErrors.NewInternalError("failed to load departments", err)
	}

	found := make(map[int64]bool, len(departments))
	for _, dept := range departments {
		found[dept.ID] = dept.IsActive
	}

	for _, id := range ids {
		active, ok := found[id]
		if !ok {
			return internalErrors.ErrDepartmentNotFound
		}
		if !active {
			return internalErrors.NewValidationError(
				"Cannot assign an inactive department",
				internalErrors.ErrCodeDepartmentInactive,
			)
		}
	}
	return nil
}

// resolvePrimary picks the primary for a full assignment: the requested
// department when it is part of the set, otherwise the lowest ID.
func resolvePrimary(ids []int64, requested *int64) (int64, error) {
	if requested != nil {
		for _, id := range ids {
			if id == *requested {
				return *requested, nil
			}
		}
		return 0, internalErrors.NewValidationError(
			"Primary department must be one of the assigned departments",
			internalErrors.ErrCodeValidationFailed,
		)
	}

	lowest := ids[0]
	for _, id := range ids[1:] {
		if id < lowest {
			lowest = id
		}
	}
	return lowest, nil
}

// resolveUpdatedPrimary keeps the current primary when it survives the
// patch, falls back to the lowest remaining ID when it was removed.
func resolveUpdatedPrimary(finalIDs []int64, final map[int64]Membership, requested *int64) (int64, error) {
	if requested != nil {
		if _, ok := final[*requested]; !ok {
			return 0, internalErrors.NewValidationError(
				"Primary department must be one of the user's departments",
				internalErrors.ErrCodeValidationFailed,
			)
		}
		return *requested, nil
	}

	for deptID, m := range final {
		if m.IsPrimary {
			return deptID, nil
		}
	}
	return resolvePrimary(finalIDs, nil)
}

func overlaps(a, b []int64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
