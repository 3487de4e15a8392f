package user

import (
	"context"
	"errors"
	"time"

	"github.com/rahmatagung/user-management/internal/audit"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	RoleID       int64      `json:"role_id"`
	RoleName     string     `json:"role_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListParams narrows and pages the user list.
type ListParams struct {
	Search   string
	RoleID   *int64
	IsActive *bool
	Page     int
	PerPage  int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 20
	}
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type RepositoryAPI interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetAll(ctx context.Context, params ListParams) ([]User, int64, error)
	SetActive(ctx context.Context, userID int64, active bool) error

	// ChangeRole updates the role and appends the trail entry in one
	// transaction.
	ChangeRole(ctx context.Context, userID, newRoleID int64, entry audit.RoleChange) error

	// ChangePassword updates the hash and appends both the change log and
	// the history row in one transaction.
	ChangePassword(ctx context.Context, userID int64, newHash string, entry audit.PasswordChange) error
}
