package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/domain"
	"taskboard/internal/query"
	"taskboard/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRepos(t *testing.T) (repository.UserRepository, repository.TaskRepository) {
	t.Helper()
	db := openTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, tasks.Init(context.Background()))
	return users, tasks
}

func seedUser(t *testing.T, users repository.UserRepository, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     "user-" + email,
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Role:         role,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func seedTask(t *testing.T, tasks repository.TaskRepository, ownerID, title string, status domain.TaskStatus, priority domain.TaskPriority) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ID:       uuid.NewString(),
		Title:    title,
		Status:   status,
		Priority: priority,
		UserID:   ownerID,
	}
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	users, _ := newTestRepos(t)
	seedUser(t, users, "ada@x.com", domain.RoleUser)

	dup := &domain.User{
		ID:           uuid.NewString(),
		Username:     "other",
		Email:        "ada@x.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	}
	err := users.Create(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserRepository_GetAndDelete(t *testing.T) {
	users, _ := newTestRepos(t)
	created := seedUser(t, users, "ada@x.com", domain.RoleAdmin)

	got, err := users.GetByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = users.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, users.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, users.Delete(context.Background(), created.ID), repository.ErrNotFound)
}

func TestUserRepository_ListFilters(t *testing.T) {
	users, _ := newTestRepos(t)
	seedUser(t, users, "ada@x.com", domain.RoleAdmin)
	seedUser(t, users, "bob@x.com", domain.RoleUser)
	seedUser(t, users, "carol@y.com", domain.RoleUser)

	page := query.NewPage(1, 10)
	sort := query.NewSort("email", "asc", query.UserSortFields)

	got, err := users.List(context.Background(), query.UserFilter{Roles: []string{"user"}}, sort, page)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob@x.com", got[0].Email)

	got, err = users.List(context.Background(), query.UserFilter{Keyword: "CAROL"}, sort, page)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "carol@y.com", got[0].Email)

	total, err := users.Count(context.Background(), query.UserFilter{Roles: []string{"user"}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	all, err := users.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, all)
}

func TestTaskRepository_CRUD(t *testing.T) {
	users, tasks := newTestRepos(t)
	owner := seedUser(t, users, "ada@x.com", domain.RoleUser)

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ID:       uuid.NewString(),
		Title:    "Write report",
		Status:   domain.TaskStatusPending,
		Priority: domain.TaskPriorityHigh,
		DueDate:  &due,
		UserID:   owner.ID,
	}
	require.NoError(t, tasks.Create(context.Background(), task))

	got, err := tasks.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))

	got.Status = domain.TaskStatusCompleted
	require.NoError(t, tasks.Update(context.Background(), got))

	got, err = tasks.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	require.NoError(t, tasks.Delete(context.Background(), task.ID))
	_, err = tasks.Get(context.Background(), task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	users, tasks := newTestRepos(t)
	ada := seedUser(t, users, "ada@x.com", domain.RoleUser)
	bob := seedUser(t, users, "bob@x.com", domain.RoleUser)

	seedTask(t, tasks, ada.ID, "Write annual report", domain.TaskStatusPending, domain.TaskPriorityHigh)
	seedTask(t, tasks, ada.ID, "Book flights", domain.TaskStatusCompleted, domain.TaskPriorityLow)
	seedTask(t, tasks, bob.ID, "Report expenses", domain.TaskStatusInProgress, domain.TaskPriorityMedium)

	page := query.NewPage(1, 10)
	sort := query.NewSort("title", "asc", query.TaskSortFields)

	got, err := tasks.List(context.Background(), query.TaskFilter{OwnerID: ada.ID}, sort, page)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = tasks.List(context.Background(), query.TaskFilter{Statuses: []string{"pending", "in-progress"}}, sort, page)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = tasks.List(context.Background(), query.TaskFilter{Priorities: []string{"high"}}, sort, page)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Write annual report", got[0].Title)

	// keyword matches title or description, case-insensitive
	got, err = tasks.List(context.Background(), query.TaskFilter{Keyword: "report"}, sort, page)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// LIKE wildcards in keywords match literally
	got, err = tasks.List(context.Background(), query.TaskFilter{Keyword: "%"}, sort, page)
	require.NoError(t, err)
	assert.Len(t, got, 0)

	total, err := tasks.Count(context.Background(), query.TaskFilter{OwnerID: ada.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestTaskRepository_SortAndPage(t *testing.T) {
	users, tasks := newTestRepos(t)
	ada := seedUser(t, users, "ada@x.com", domain.RoleUser)

	titles := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, title := range titles {
		seedTask(t, tasks, ada.ID, title, domain.TaskStatusPending, domain.TaskPriorityLow)
	}

	sort := query.NewSort("title", "asc", query.TaskSortFields)

	got, err := tasks.List(context.Background(), query.TaskFilter{}, sort, query.NewPage(1, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Title)
	assert.Equal(t, "bravo", got[1].Title)

	got, err = tasks.List(context.Background(), query.TaskFilter{}, sort, query.NewPage(3, 2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "echo", got[0].Title)
}
