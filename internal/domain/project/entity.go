package project

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a project could not be located.
	ErrNotFound = errors.New("project not found")
	// ErrDuplicateName signals project name uniqueness constraint breaches.
	ErrDuplicateName = errors.New("project with name already exists")
	// ErrInvalid wraps payload validation failures.
	ErrInvalid = errors.New("invalid project")
)

// Project groups tasks under a named owner.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Update applies optional field updates to the project.
func (p *Project) Update(name, description *string, now time.Time) {
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	p.UpdatedAt = now
}
