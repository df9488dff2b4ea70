package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domain "taskmanager/backend/internal/domain/auth"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Hasher produces password hashes for accounts created outside registration.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Service provides user management use cases for administrative workflows.
type Service struct {
	repo    domain.UserRepository
	hasher  Hasher
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository, hasher Hasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		hasher:  hasher,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// List returns all users without password hashes.
func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

// Get retrieves a single user by its identifier.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// AssignRoles replaces the role set of a user. Tokens already issued keep the
// roles they were issued with until they expire.
func (s *Service) AssignRoles(ctx context.Context, id int64, roles []string) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.ErrUserNotFound
	}
	normalized, err := normalizeRoles(roles)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRoles(ctx, id, normalized); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the target user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrUserNotFound
	}
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin creates an initial administrator when no user holds the admin
// role. It does nothing when one already exists or username is empty.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	if password == "" {
		return errors.New("bootstrap admin password is required")
	}

	has, err := s.repo.HasRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("checking for admin: %w", err)
	}
	if has {
		return nil
	}

	if existing, err := s.repo.FindByUsername(ctx, username); err == nil {
		roles := append(existing.Roles, domain.RoleAdmin)
		if err := s.repo.SetRoles(ctx, existing.ID, dedupe(roles)); err != nil {
			return fmt.Errorf("promoting bootstrap admin: %w", err)
		}
		s.logger.Info("existing user promoted to admin", "username", username)
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing bootstrap admin password: %w", err)
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: hashed,
		Roles:        []string{domain.RoleUser, domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	s.logger.Info("initial admin created", "username", username, "id", user.ID)
	return nil
}

func normalizeRoles(raw []string) ([]string, error) {
	if err := validation.Validate(raw, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: roles %v", domain.ErrInvalidRole, err)
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r)
		if err := domain.ValidateRoleName(name); err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		roles = append(roles, name)
	}
	return dedupe(roles), nil
}

func dedupe(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func sanitizeUsers(items []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(items))
	for _, item := range items {
		out = append(out, item.Sanitized())
	}
	return out
}
