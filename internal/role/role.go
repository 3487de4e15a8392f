package role

import (
	"context"
	"errors"
	"time"
)

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Rank exposes the hierarchy position alongside the stored row for API
// consumers that render privilege ordering.
func (r *Role) Rank() int {
	rank, ok := hierarchy[r.Name]
	if !ok {
		return 0
	}
	return rank
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Role, error)
	GetByID(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
}

var ErrNotFound = errors.New("role not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAll(ctx context.Context) ([]*Role, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetByID(ctx, id)
}
