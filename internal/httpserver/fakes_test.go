package httpserver

import (
	"context"
	"errors"
	"sort"
	"sync"

	authdomain "taskmanager/backend/internal/domain/auth"
	projectdomain "taskmanager/backend/internal/domain/project"
	taskdomain "taskmanager/backend/internal/domain/task"
)

var errDatabaseDown = errors.New("database down")

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*authdomain.User
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[int64]*authdomain.User)}
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*authdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, authdomain.ErrUserNotFound
}

func (m *memoryUsers) Create(_ context.Context, user *authdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == user.Username {
			return authdomain.ErrUsernameExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	clone := *user
	m.byID[user.ID] = &clone
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*authdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryUsers) List(context.Context) ([]*authdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*authdomain.User, 0, len(m.byID))
	for _, u := range m.byID {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryUsers) SetRoles(_ context.Context, id int64, roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return authdomain.ErrUserNotFound
	}
	u.Roles = append([]string(nil), roles...)
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return authdomain.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryUsers) HasRole(_ context.Context, role string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.HasRole(role) {
			return true, nil
		}
	}
	return false, nil
}

type memoryProjects struct {
	mu    sync.Mutex
	items map[string]*projectdomain.Project
}

func newMemoryProjects() *memoryProjects {
	return &memoryProjects{items: make(map[string]*projectdomain.Project)}
}

func (m *memoryProjects) Create(_ context.Context, p *projectdomain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.items[p.ID] = &clone
	return nil
}

func (m *memoryProjects) GetByID(_ context.Context, id string) (*projectdomain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, projectdomain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memoryProjects) GetByName(_ context.Context, name string) (*projectdomain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, projectdomain.ErrNotFound
}

func (m *memoryProjects) List(context.Context) ([]*projectdomain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*projectdomain.Project, 0, len(m.items))
	for _, p := range m.items {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryProjects) Update(_ context.Context, p *projectdomain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return projectdomain.ErrNotFound
	}
	clone := *p
	m.items[p.ID] = &clone
	return nil
}

func (m *memoryProjects) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return projectdomain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memoryTasks struct {
	mu    sync.Mutex
	items map[string]*taskdomain.Task
}

func newMemoryTasks() *memoryTasks {
	return &memoryTasks{items: make(map[string]*taskdomain.Task)}
}

func (m *memoryTasks) Create(_ context.Context, t *taskdomain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *t
	m.items[t.ID] = &clone
	return nil
}

func (m *memoryTasks) GetByID(_ context.Context, id string) (*taskdomain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, taskdomain.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memoryTasks) List(ctx context.Context) ([]*taskdomain.Task, error) {
	return m.ListByProject(ctx, "")
}

func (m *memoryTasks) ListByProject(_ context.Context, projectID string) ([]*taskdomain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*taskdomain.Task{}
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

func (m *memoryTasks) Update(_ context.Context, t *taskdomain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[t.ID]; !ok {
		return taskdomain.ErrNotFound
	}
	clone := *t
	m.items[t.ID] = &clone
	return nil
}

func (m *memoryTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return taskdomain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	denied   []string
	statuses []int
}

func (r *recordingMetrics) RecordAccessDenied(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied = append(r.denied, kind)
}

func (r *recordingMetrics) RecordHTTPStatus(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, code)
}

func (r *recordingMetrics) deniedKinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.denied...)
}
