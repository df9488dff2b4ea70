package task_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	authdomain "taskmanager/backend/internal/domain/auth"
	projectdomain "taskmanager/backend/internal/domain/project"
	domain "taskmanager/backend/internal/domain/task"
	"taskmanager/backend/internal/usecase/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apolloID = "6f1c2b9e-4d0a-4f4e-9a53-2f1d7c0b8e11"

var errStoreDown = errors.New("store down")

type memoryTasks struct {
	mu    sync.Mutex
	items map[string]*domain.Task
}

func newMemoryTasks() *memoryTasks {
	return &memoryTasks{items: make(map[string]*domain.Task)}
}

func (m *memoryTasks) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *t
	m.items[t.ID] = &clone
	return nil
}

func (m *memoryTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memoryTasks) List(ctx context.Context) ([]*domain.Task, error) {
	return m.ListByProject(ctx, "")
}

func (m *memoryTasks) ListByProject(_ context.Context, projectID string) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Task{}
	for _, t := range m.items {
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memoryTasks) Update(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[t.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *t
	m.items[t.ID] = &clone
	return nil
}

func (m *memoryTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type stubProjects map[string]*projectdomain.Project

func (s stubProjects) GetByID(_ context.Context, id string) (*projectdomain.Project, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, projectdomain.ErrNotFound
}

type stubUsers struct {
	users map[int64]*authdomain.User
	err   error
}

func (s stubUsers) GetByID(_ context.Context, id int64) (*authdomain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, authdomain.ErrUserNotFound
}

func newService() (*task.Service, *memoryTasks) {
	repo := newMemoryTasks()
	projects := stubProjects{apolloID: {ID: apolloID, Name: "Apollo"}}
	users := stubUsers{users: map[int64]*authdomain.User{2: {ID: 2, Username: "bob"}}}
	return task.NewService(repo, projects, users), repo
}

func TestService_Create_Defaults(t *testing.T) {
	svc, _ := newService()

	got, err := svc.Create(context.Background(), 1, task.Input{Title: "  Write docs  "})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Write docs", got.Title)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.PriorityMedium, got.Priority)
	assert.Equal(t, int64(1), got.CreatorID)
	assert.Empty(t, got.ProjectID)
	assert.Nil(t, got.DueDate)
}

func TestService_Create_NormalisesAndLinks(t *testing.T) {
	svc, _ := newService()
	due := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	got, err := svc.Create(context.Background(), 1, task.Input{
		Title:      "Launch",
		Status:     "in_progress",
		Priority:   " high ",
		DueDate:    &due,
		ProjectID:  apolloID,
		AssigneeID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, apolloID, got.ProjectID)
	assert.Equal(t, int64(2), got.AssigneeID)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, time.UTC, got.DueDate.Location())
	assert.True(t, got.DueDate.Equal(due))
}

func TestService_Create_Invalid(t *testing.T) {
	svc, _ := newService()

	tests := []struct {
		name  string
		input task.Input
	}{
		{name: "blank title", input: task.Input{Title: "   "}},
		{name: "title too long", input: task.Input{Title: strings.Repeat("x", 201)}},
		{name: "unknown status", input: task.Input{Title: "a", Status: "DONE"}},
		{name: "unknown priority", input: task.Input{Title: "a", Priority: "URGENT"}},
		{name: "missing project", input: task.Input{Title: "a", ProjectID: "0b0e7c3e-0000-4000-8000-000000000000"}},
		{name: "malformed project id", input: task.Input{Title: "a", ProjectID: "apollo"}},
		{name: "missing assignee", input: task.Input{Title: "a", AssigneeID: 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalid)
		})
	}
}

func TestService_Create_AssigneeLookupFailure(t *testing.T) {
	svc := task.NewService(newMemoryTasks(), stubProjects{}, stubUsers{err: errStoreDown})

	_, err := svc.Create(context.Background(), 1, task.Input{Title: "a", AssigneeID: 2})
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domain.ErrInvalid)
}

func TestService_CreateInProject(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	got, err := svc.CreateInProject(ctx, 1, apolloID, task.Input{Title: "Stage", ProjectID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, apolloID, got.ProjectID)

	_, err = svc.CreateInProject(ctx, 1, "0b0e7c3e-0000-4000-8000-000000000000", task.Input{Title: "Stage"})
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)

	_, err = svc.CreateInProject(ctx, 1, "not-a-uuid", task.Input{Title: "Stage"})
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)
}

func TestService_ListByProject(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateInProject(ctx, 1, apolloID, task.Input{Title: "B"})
	require.NoError(t, err)
	_, err = svc.CreateInProject(ctx, 1, apolloID, task.Input{Title: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, task.Input{Title: "Loose"})
	require.NoError(t, err)

	items, err := svc.ListByProject(ctx, apolloID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ListByProject(ctx, "0b0e7c3e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)
}

func TestService_UpdateDelete(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, task.Input{Title: "Draft", ProjectID: apolloID, AssigneeID: 2})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, task.Input{Title: "Final", Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, int64(1), updated.CreatorID)
	assert.Empty(t, updated.ProjectID)
	assert.Zero(t, updated.AssigneeID)

	_, err = svc.Update(ctx, created.ID, task.Input{Title: ""})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Update(ctx, "not-a-uuid", task.Input{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), domain.ErrNotFound)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
