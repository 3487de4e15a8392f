package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	internalErrors "github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/internal/audit"
	"github.com/rahmatagung/user-management/internal/core/events"
	"github.com/rahmatagung/user-management/internal/role"
)

// passwordHistoryDepth is how many previous hashes a new password is
// compared against.
const passwordHistoryDepth = 5

// Actor identifies the authenticated caller for operations whose outcome
// depends on who is asking.
type Actor struct {
	ID       int64
	Username string
	RoleName string
}

// RequestMeta carries client details recorded in the password change trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type Availability struct {
	UsernameAvailable bool `json:"username_available"`
	EmailAvailable    bool `json:"email_available"`
}

type ServiceAPI interface {
	Signup(ctx context.Context, dto SignupDTO) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetAll(ctx context.Context, params ListParams) ([]User, int64, error)
	ChangePassword(ctx context.Context, actor Actor, dto ChangePasswordDTO, meta RequestMeta) error
	ChangeRole(ctx context.Context, actor Actor, targetID int64, dto ChangeRoleDTO) (*User, error)
	RoleHistory(ctx context.Context, targetID int64, from, to *time.Time) ([]audit.RoleHistoryEntry, error)
	SetActive(ctx context.Context, actor Actor, targetID int64, active bool) (*User, error)
	CheckAvailability(ctx context.Context, username, email string) (*Availability, error)
}

type Service struct {
	repo       RepositoryAPI
	roleRepo   role.Repository
	auditRepo  audit.RepositoryAPI
	eventBus   *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	roleRepo role.Repository,
	auditRepo audit.RepositoryAPI,
	eventBus *events.EventBus,
	bcryptCost int,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		roleRepo:   roleRepo,
		auditRepo:  auditRepo,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Signup registers a new account with the default User role. Email and
// username are unique; collisions come back as conflicts.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	username := strings.TrimSpace(dto.Username)

	if existing, err := s.repo.GetByEmail(ctx, email); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, internalErrors.NewInternalError("failed to check email", err)
	} else if existing != nil {
		return nil, internalErrors.NewConflictError(
			"An account with this email already exists",
			internalErrors.ErrCodeEmailExists,
		)
	}

	if existing, err := s.repo.GetByUsername(ctx, username); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, internalErrors.NewInternalError("failed to check username", err)
	} else if existing != nil {
		return nil, internalErrors.NewConflictError(
			"This username is already taken",
			internalErrors.ErrCodeUsernameExists,
		)
	}

	defaultRole, err := s.roleRepo.GetByName(ctx, role.User)
	if err != nil {
		return nil, internalErrors.NewInternalError("default role is not configured", err)
	}
	if !defaultRole.IsActive {
		return nil, internalErrors.ErrRoleInactive
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to hash password", err)
	}

	newUser := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(dto.FullName),
		PhoneNumber:  strings.TrimSpace(dto.PhoneNumber),
		RoleID:       defaultRole.ID,
		RoleName:     defaultRole.Name,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, internalErrors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID, "username", newUser.Username)
	s.eventBus.Publish(ctx, events.NewUserRegisteredEvent(newUser.ID, newUser.Username, newUser.Email))

	return newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internalErrors.ErrUserNotFound
		}
		return nil, internalErrors.NewInternalError("failed to get user", err)
	}
	return u, nil
}

func (s *Service) GetAll(ctx context.Context, params ListParams) ([]User, int64, error) {
	params.Normalize()

	users, total, err := s.repo.GetAll(ctx, params)
	if err != nil {
		return nil, 0, internalErrors.NewInternalError("failed to list users", err)
	}
	return users, total, nil
}

// ChangePassword lets a user rotate their own password. The new password
// must differ from the current one and from the last few previous hashes;
// the hash update and both trail rows commit together.
func (s *Service) ChangePassword(ctx context.Context, actor Actor, dto ChangePasswordDTO, meta RequestMeta) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return internalErrors.ErrUserNotFound
		}
		return internalErrors.NewInternalError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return internalErrors.ErrInvalidCurrentPassword
	}

	if err := s.checkPasswordReuse(ctx, u, dto.NewPassword); err != nil {
		return err
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internalErrors.NewInternalError("failed to hash password", err)
	}

	entry := audit.PasswordChange{
		UserID:               u.ID,
		ChangedByUserID:      actor.ID,
		ChangeType:           audit.ChangeTypeUserInitiated,
		IPAddress:            meta.IPAddress,
		UserAgent:            meta.UserAgent,
		PreviousPasswordHash: u.PasswordHash,
	}
	if err := s.repo.ChangePassword(ctx, u.ID, string(newHash), entry); err != nil {
		return internalErrors.NewInternalError("failed to change password", err)
	}

	s.logger.Info("password changed", "user_id", u.ID)
	s.eventBus.Publish(ctx, events.NewUserPasswordChangedEvent(u.ID, u.Username, u.Email))

	return nil
}

// ChangeRole moves a target user to a new role. Self-changes are rejected,
// SuperAdmin targets are protected from non-SuperAdmins, and the hierarchy
// decides whether the acting role may make this specific move. The role
// update and its trail entry commit in the same transaction.
func (s *Service) ChangeRole(ctx context.Context, actor Actor, targetID int64, dto ChangeRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if actor.ID == targetID {
		return nil, internalErrors.ErrOwnRoleChange
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internalErrors.ErrUserNotFound
		}
		return nil, internalErrors.NewInternalError("failed to get user", err)
	}

	newRole, err := s.roleRepo.GetByID(ctx, dto.NewRoleID)
	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return nil, internalErrors.ErrRoleNotFound
		}
		return nil, internalErrors.NewInternalError("failed to get role", err)
	}
	if !newRole.IsActive {
		return nil, internalErrors.ErrRoleInactive
	}

	if target.RoleID == newRole.ID {
		return nil, internalErrors.NewValidationError(
			"User already has this role",
			internalErrors.ErrCodeValidationFailed,
		)
	}

	if target.RoleName == role.SuperAdmin && actor.RoleName != role.SuperAdmin {
		return nil, internalErrors.ErrSuperAdminTarget
	}

	if !role.CanChangeRole(actor.RoleName, target.RoleName, newRole.Name) {
		s.logger.Warn("role change denied",
			"actor_id", actor.ID,
			"actor_role", actor.RoleName,
			"target_id", target.ID,
			"target_role", target.RoleName,
			"requested_role", newRole.Name,
		)
		return nil, internalErrors.ErrRoleChangeDenied
	}

	entry := audit.RoleChange{
		UserID:          target.ID,
		PreviousRoleID:  target.RoleID,
		NewRoleID:       newRole.ID,
		ChangedByUserID: actor.ID,
		Reason:          strings.TrimSpace(dto.Reason),
	}
	if err := s.repo.ChangeRole(ctx, target.ID, newRole.ID, entry); err != nil {
		return nil, internalErrors.NewInternalError("failed to change role", err)
	}

	s.logger.Info("role changed",
		"user_id", target.ID,
		"previous_role", target.RoleName,
		"new_role", newRole.Name,
		"changed_by", actor.ID,
	)
	s.eventBus.Publish(ctx, events.NewUserRoleChangedEvent(
		target.ID, target.Username, target.Email,
		target.RoleName, newRole.Name, actor.Username,
	))

	return s.repo.GetByID(ctx, target.ID)
}

func (s *Service) RoleHistory(ctx context.Context, targetID int64, from, to *time.Time) ([]audit.RoleHistoryEntry, error) {
	if _, err := s.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	entries, err := s.auditRepo.GetRoleHistory(ctx, targetID, from, to)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to load role history", err)
	}
	return entries, nil
}

// SetActive toggles account status. Users cannot deactivate themselves.
func (s *Service) SetActive(ctx context.Context, actor Actor, targetID int64, active bool) (*User, error) {
	if actor.ID == targetID && !active {
		return nil, internalErrors.NewValidationError(
			"You cannot deactivate your own account",
			internalErrors.ErrCodeValidationFailed,
		)
	}

	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsActive == active {
		return target, nil
	}

	if err := s.repo.SetActive(ctx, targetID, active); err != nil {
		return nil, internalErrors.NewInternalError("failed to update user status", err)
	}

	s.logger.Info("user status changed", "user_id", targetID, "is_active", active, "changed_by", actor.ID)
	return s.repo.GetByID(ctx, targetID)
}

func (s *Service) CheckAvailability(ctx context.Context, username, email string) (*Availability, error) {
	result := &Availability{UsernameAvailable: true, EmailAvailable: true}

	if username != "" {
		existing, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, internalErrors.NewInternalError("failed to check username", err)
		}
		result.UsernameAvailable = existing == nil
	}

	if email != "" {
		existing, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, internalErrors.NewInternalError("failed to check email", err)
		}
		result.EmailAvailable = existing == nil
	}

	return result, nil
}

// checkPasswordReuse compares the candidate against the current hash and the
// recent history.
func (s *Service) checkPasswordReuse(ctx context.Context, u *User, newPassword string) error {
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPassword)) == nil {
		return internalErrors.ErrPasswordReuse
	}

	hashes, err := s.auditRepo.GetRecentPasswordHashes(ctx, u.ID, passwordHistoryDepth)
	if err != nil {
		return internalErrors.NewInternalError("failed to load password history", err)
	}
	for _, hash := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(newPassword)) == nil {
			return internalErrors.ErrPasswordReuse
		}
	}
	return nil
}
