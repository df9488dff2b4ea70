package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "taskmanager/backend/internal/domain/auth"
	projectdomain "taskmanager/backend/internal/domain/project"
	domain "taskmanager/backend/internal/domain/task"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// ProjectLookup resolves the project a task is filed under.
type ProjectLookup interface {
	GetByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// UserLookup resolves task assignees.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*authdomain.User, error)
}

// Service encapsulates task use cases.
type Service struct {
	repo     domain.Repository
	projects ProjectLookup
	users    UserLookup
	nowFunc  func() time.Time
}

// NewService constructs a task service.
func NewService(repo domain.Repository, projects ProjectLookup, users UserLookup) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		users:    users,
		nowFunc:  time.Now,
	}
}

// Input is the full task payload for create and update. Status defaults to
// PENDING and priority to MEDIUM.
type Input struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"dueDate"`
	ProjectID   string          `json:"projectId"`
	AssigneeID  int64           `json:"assigneeId"`
}

// Validate checks field shapes. References are checked by the service.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 5000)),
		validation.Field(&in.Status, validation.In(
			domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled,
		)),
		validation.Field(&in.Priority, validation.In(
			domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh,
		)),
	)
}

// Create stores a new task created by creatorID.
func (s *Service) Create(ctx context.Context, creatorID int64, input Input) (*domain.Task, error) {
	input, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	task := &domain.Task{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		CreatedAt: now,
	}
	apply(task, input, now)

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateInProject files a new task under projectID, which must exist.
func (s *Service) CreateInProject(ctx context.Context, creatorID int64, projectID string, input Input) (*domain.Task, error) {
	project, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	input.ProjectID = project.ID
	return s.Create(ctx, creatorID, input)
}

// List retrieves all tasks.
func (s *Service) List(ctx context.Context) ([]*domain.Task, error) {
	return s.repo.List(ctx)
}

// ListByProject retrieves the tasks filed under projectID.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	project, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, project.ID)
}

// Get fetches a task by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Task, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Update replaces a task's editable fields. The creator never changes.
func (s *Service) Update(ctx context.Context, id string, input Input) (*domain.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input, err = s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	apply(task, input, s.nowFunc().UTC())
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) prepare(ctx context.Context, in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Status = domain.Status(strings.ToUpper(strings.TrimSpace(string(in.Status))))
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	in.Priority = domain.Priority(strings.ToUpper(strings.TrimSpace(string(in.Priority))))
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}

	if err := in.Validate(); err != nil {
		return in, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}

	if in.ProjectID != "" {
		project, err := s.project(ctx, in.ProjectID)
		if errors.Is(err, projectdomain.ErrNotFound) {
			return in, fmt.Errorf("%w: project does not exist", domain.ErrInvalid)
		}
		if err != nil {
			return in, err
		}
		in.ProjectID = project.ID
	}

	if in.AssigneeID != 0 {
		_, err := s.users.GetByID(ctx, in.AssigneeID)
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return in, fmt.Errorf("%w: assignee does not exist", domain.ErrInvalid)
		}
		if err != nil {
			return in, err
		}
	}
	return in, nil
}

func (s *Service) project(ctx context.Context, id string) (*projectdomain.Project, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, projectdomain.ErrNotFound
	}
	return s.projects.GetByID(ctx, id)
}

func apply(task *domain.Task, in Input, now time.Time) {
	task.Title = in.Title
	task.Description = in.Description
	task.Status = in.Status
	task.Priority = in.Priority
	task.ProjectID = in.ProjectID
	task.AssigneeID = in.AssigneeID
	task.DueDate = nil
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		task.DueDate = &due
	}
	task.UpdatedAt = now
}
