package postgres

import (
	"context"
	"errors"

	domain "taskmanager/backend/internal/domain/project"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository persists projects in PostgreSQL.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository constructs a repository.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

var _ domain.Repository = (*ProjectRepository)(nil)

const selectProjects = `
SELECT id::text, name, description, COALESCE(owner_id, 0), created_at, updated_at
FROM projects
`

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const query = `
INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4::bigint, 0), $5, $6)
`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.OwnerID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return err
	}
	return nil
}

// GetByID fetches a project by id.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return scanOneProject(r.pool.QueryRow(ctx, selectProjects+"WHERE id = $1", id))
}

// GetByName fetches a project by its unique name.
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return scanOneProject(r.pool.QueryRow(ctx, selectProjects+"WHERE name = $1", name))
}

// List returns all projects sorted by name.
func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx, selectProjects+"ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update writes project changes.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const query = `
UPDATE projects
SET name = $2,
    description = $3,
    updated_at = $4
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Description, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a project by id.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOneProject(row pgx.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
