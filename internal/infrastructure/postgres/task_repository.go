package postgres

import (
	"context"
	"errors"

	domain "taskmanager/backend/internal/domain/task"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository persists tasks in PostgreSQL.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository constructs a repository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

var _ domain.Repository = (*TaskRepository)(nil)

const selectTasks = `
SELECT id::text, title, description, status, priority, due_date,
       COALESCE(project_id::text, ''), COALESCE(creator_id, 0), COALESCE(assignee_id, 0),
       created_at, updated_at
FROM tasks
`

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	const query = `
INSERT INTO tasks (id, title, description, status, priority, due_date,
                   project_id, creator_id, assignee_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6,
        NULLIF($7::text, '')::uuid, NULLIF($8::bigint, 0), NULLIF($9::bigint, 0), $10, $11)
`
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		t.ProjectID,
		t.CreatorID,
		t.AssigneeID,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// GetByID fetches a task by id.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, selectTasks+"WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

// List returns all tasks, newest first.
func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	return r.query(ctx, selectTasks+"ORDER BY created_at DESC, id")
}

// ListByProject returns the tasks filed under projectID, newest first.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	return r.query(ctx, selectTasks+"WHERE project_id = $1 ORDER BY created_at DESC, id", projectID)
}

// Update writes task changes. The creator is immutable.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	const query = `
UPDATE tasks
SET title = $2,
    description = $3,
    status = $4,
    priority = $5,
    due_date = $6,
    project_id = NULLIF($7::text, '')::uuid,
    assignee_id = NULLIF($8::bigint, 0),
    updated_at = $9
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		t.ProjectID,
		t.AssigneeID,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a task by id.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&t.DueDate,
		&t.ProjectID,
		&t.CreatorID,
		&t.AssigneeID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	return &t, nil
}
