package repository

import (
	"context"

	"taskboard/internal/domain"
	"taskboard/internal/query"
)

// TaskRepository exposes persistence operations for Task entities.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter query.TaskFilter, sort query.Sort, page query.Page) ([]domain.Task, error)
	Count(ctx context.Context, filter query.TaskFilter) (int, error)
}
