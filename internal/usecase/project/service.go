package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "taskmanager/backend/internal/domain/project"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// Service encapsulates project use cases.
type Service struct {
	repo    domain.Repository
	nowFunc func() time.Time
}

// NewService constructs a project service.
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for project creation.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the creation payload.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	)
}

// UpdateInput encapsulates partial project updates.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create stores a new project owned by ownerID after validation.
func (s *Service) Create(ctx context.Context, ownerID int64, input CreateInput) (*domain.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}

	if _, err := s.repo.GetByName(ctx, input.Name); err == nil {
		return nil, domain.ErrDuplicateName
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.nowFunc().UTC()
	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// List retrieves all projects.
func (s *Service) List(ctx context.Context) ([]*domain.Project, error) {
	return s.repo.List(ctx)
}

// Get fetches a project by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Project, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies partial updates to a project.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		newName := strings.TrimSpace(*input.Name)
		if err := validation.Validate(newName, validation.Required, validation.Length(1, 120)); err != nil {
			return nil, fmt.Errorf("%w: name %v", domain.ErrInvalid, err)
		}
		if newName != project.Name {
			if _, err := s.repo.GetByName(ctx, newName); err == nil {
				return nil, domain.ErrDuplicateName
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		input.Name = &newName
	}

	if input.Description != nil {
		if err := validation.Validate(*input.Description, validation.Length(0, 2000)); err != nil {
			return nil, fmt.Errorf("%w: description %v", domain.ErrInvalid, err)
		}
	}

	project.Update(input.Name, input.Description, s.nowFunc().UTC())

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
