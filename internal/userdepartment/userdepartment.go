// Package userdepartment manages which departments a user belongs to. A user
// may belong to many departments but exactly one membership is primary; every
// mutation keeps that invariant inside a single transaction.
package userdepartment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotMember    = errors.New("user is not a member of this department")
)

// Membership is one user-department link together with the department fields
// the read endpoints need.
type Membership struct {
	DepartmentID     int64     `json:"department_id"`
	DepartmentName   string    `json:"department_name"`
	DepartmentCode   string    `json:"department_code"`
	IsPrimary        bool      `json:"is_primary"`
	AssignedByUserID int64     `json:"assigned_by_user_id"`
	AssignedAt       time.Time `json:"assigned_at"`
}

// DepartmentStats is the per-department membership summary.
type DepartmentStats struct {
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	DepartmentCode string `json:"department_code"`
	MemberCount    int64  `json:"member_count"`
	PrimaryCount   int64  `json:"primary_count"`
}

type RepositoryAPI interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetMemberships(ctx context.Context, userID int64) ([]Membership, error)
	// ReplaceMemberships swaps the user's whole membership set atomically.
	ReplaceMemberships(ctx context.Context, userID int64, memberships []Membership) error
	Clear(ctx context.Context, userID int64) (int64, error)
	SetPrimary(ctx context.Context, userID, departmentID int64) error
	HasMembership(ctx context.Context, userID, departmentID int64) (bool, error)
	Stats(ctx context.Context) ([]DepartmentStats, error)
}
