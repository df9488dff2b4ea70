package auth

import "context"

// CredentialStore is the read-only lookup the authentication core depends on.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// UserRepository defines persistence operations for users and their roles.
type UserRepository interface {
	CredentialStore
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetRoles(ctx context.Context, id int64, roles []string) error
	Delete(ctx context.Context, id int64) error
	HasRole(ctx context.Context, role string) (bool, error)
}
