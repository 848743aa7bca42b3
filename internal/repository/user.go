package repository

import (
	"context"

	"taskboard/internal/domain"
	"taskboard/internal/query"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter query.UserFilter, sort query.Sort, page query.Page) ([]domain.User, error)
	Count(ctx context.Context, filter query.UserFilter) (int, error)
	CountAll(ctx context.Context) (int, error)
}
