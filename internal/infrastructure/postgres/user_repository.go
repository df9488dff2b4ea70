package postgres

import (
	"context"
	"errors"

	domain "taskmanager/backend/internal/domain/auth"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository persists users and their role assignments in PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ domain.UserRepository = (*UserRepository)(nil)

const selectUsers = `
SELECT u.id, u.username, u.password_hash, u.created_at, u.updated_at,
       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id
`

// FindByUsername looks up a user by exact, case-sensitive username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUsers+"WHERE u.username = $1 GROUP BY u.id", username)
	return scanOne(row)
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUsers+"WHERE u.id = $1 GROUP BY u.id", id)
	return scanOne(row)
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+"GROUP BY u.id ORDER BY u.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts the user and its role assignments in one transaction and
// sets user.ID. Unknown role names are created.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
INSERT INTO users (username, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, query, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrUsernameExists
			}
			return err
		}
		if err := assignRoles(ctx, tx, id, user.Roles); err != nil {
			return err
		}
		user.ID = id
		return nil
	})
}

// SetRoles replaces the role set of a user.
func (r *UserRepository) SetRoles(ctx context.Context, id int64, roles []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		return assignRoles(ctx, tx, id, roles)
	})
}

// Delete removes a user by id. Role assignments cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// HasRole reports whether any user holds role.
func (r *UserRepository) HasRole(ctx context.Context, role string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM user_roles ur
    JOIN roles r ON r.id = ur.role_id
    WHERE r.name = $1
)
`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, role).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func assignRoles(ctx context.Context, tx pgx.Tx, userID int64, roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, `INSERT INTO roles (name) SELECT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`, roles); err != nil {
		return err
	}
	const link = `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE name = ANY($2::text[])
ON CONFLICT DO NOTHING
`
	_, err := tx.Exec(ctx, link, userID, roles)
	return err
}

func scanOne(row pgx.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Roles,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
