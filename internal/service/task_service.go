package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/apperr"
	"taskboard/internal/domain"
	"taskboard/internal/policy"
	"taskboard/internal/query"
	"taskboard/internal/repository"
)

// CreateTaskInput is the task-create payload. UserID names the owner and is
// required; the owner must exist when the task is created.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	UserID      string
}

// UpdateTaskInput is a merge-patch: nil fields keep their stored values.
// Ownership is immutable, so there is no owner field here.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	// DueDate cannot be cleared once set: a JSON null is indistinguishable
	// from an omitted field here, so null reads as "keep the stored value".
	DueDate *time.Time
}

func (in UpdateTaskInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.Priority == nil && in.DueDate == nil
}

// ListTasksInput carries raw list parameters before normalization.
type ListTasksInput struct {
	Page      int
	Limit     int
	Status    string
	Priority  string
	Keyword   string
	OwnerID   string
	SortBy    string
	SortOrder string
}

// TaskService covers the task resource operations, enforcing ownership per
// call. Missing ids resolve to NotFound before any policy check, so an
// existing but inaccessible task is always reported as Forbidden.
type TaskService interface {
	Create(ctx context.Context, caller policy.Identity, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, caller policy.Identity, in ListTasksInput) ([]domain.Task, query.Pagination, error)
	Get(ctx context.Context, caller policy.Identity, id string) (*domain.Task, error)
	Update(ctx context.Context, caller policy.Identity, id string, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, caller policy.Identity, id string) (*domain.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) TaskService {
	return &taskService{tasks: tasks, users: users}
}

func (s *taskService) Create(ctx context.Context, caller policy.Identity, in CreateTaskInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.E(apperr.KindValidation, "Title is required.")
	}
	if in.Status == "" {
		in.Status = domain.TaskStatusPending
	}
	if !domain.ValidTaskStatus(in.Status) {
		return nil, apperr.E(apperr.KindValidation, "Status must be pending, in-progress or completed.")
	}
	if in.Priority == "" {
		in.Priority = domain.TaskPriorityLow
	}
	if !domain.ValidTaskPriority(in.Priority) {
		return nil, apperr.E(apperr.KindValidation, "Priority must be low, medium or high.")
	}
	if in.UserID == "" {
		return nil, apperr.E(apperr.KindValidation, "Owner user id is required.")
	}

	if !policy.CanCreateTask(caller, in.UserID) {
		return nil, apperr.E(apperr.KindForbidden, "You can only create tasks for your own account.")
	}

	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindValidation, "Owner user does not exist.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to create task.", err)
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		UserID:      in.UserID,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to create task.", err)
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, caller policy.Identity, in ListTasksInput) ([]domain.Task, query.Pagination, error) {
	filter := query.TaskFilter{
		OwnerID: policy.TaskOwnerFilter(caller, in.OwnerID),
		Statuses: query.CSVValues(in.Status, func(v string) bool {
			return domain.ValidTaskStatus(domain.TaskStatus(v))
		}),
		Priorities: query.CSVValues(in.Priority, func(v string) bool {
			return domain.ValidTaskPriority(domain.TaskPriority(v))
		}),
		Keyword: query.Keyword(in.Keyword),
	}
	sort := query.NewSort(in.SortBy, in.SortOrder, query.TaskSortFields)
	page := query.NewPage(in.Page, in.Limit)

	tasks, err := s.tasks.List(ctx, filter, sort, page)
	if err != nil {
		return nil, query.Pagination{}, apperr.Wrap(apperr.KindInternal, "Unable to load tasks.", err)
	}
	total, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return nil, query.Pagination{}, apperr.Wrap(apperr.KindInternal, "Unable to load tasks.", err)
	}
	return tasks, query.Paginate(page, total), nil
}

func (s *taskService) Get(ctx context.Context, caller policy.Identity, id string) (*domain.Task, error) {
	task, err := s.fetch(ctx, caller, id, "Unable to load task.")
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, caller policy.Identity, id string, in UpdateTaskInput) (*domain.Task, error) {
	if in.empty() {
		return nil, apperr.E(apperr.KindValidation, "At least one field is required.")
	}

	task, err := s.fetch(ctx, caller, id, "Unable to update task.")
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.E(apperr.KindValidation, "Title is required.")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !domain.ValidTaskStatus(*in.Status) {
			return nil, apperr.E(apperr.KindValidation, "Status must be pending, in-progress or completed.")
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !domain.ValidTaskPriority(*in.Priority) {
			return nil, apperr.E(apperr.KindValidation, "Priority must be low, medium or high.")
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to update task.", err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, caller policy.Identity, id string) (*domain.Task, error) {
	task, err := s.fetch(ctx, caller, id, "Unable to delete task.")
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Unable to delete task.", err)
	}
	return task, nil
}

// fetch loads a task and applies the existence-first access ordering.
func (s *taskService) fetch(ctx context.Context, caller policy.Identity, id, failMsg string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "Task not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, failMsg, err)
	}
	if !policy.CanAccessTask(caller, task.UserID) {
		return nil, apperr.E(apperr.KindForbidden, "Forbidden.")
	}
	return task, nil
}
