package task

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a task could not be located.
	ErrNotFound = errors.New("task not found")
	// ErrInvalid wraps payload validation failures and dangling references.
	ErrInvalid = errors.New("invalid task")
)

// Status tracks task progress.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Priority ranks tasks.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Task is a unit of work, optionally filed under a project and assigned to a user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ProjectID   string     `json:"projectId,omitempty"`
	CreatorID   int64      `json:"creatorId,omitempty"`
	AssigneeID  int64      `json:"assigneeId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
