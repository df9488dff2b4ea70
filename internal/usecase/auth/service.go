package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	domain "taskmanager/backend/internal/domain/auth"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users    domain.UserRepository
	tokens   TokenCodec
	hasher   PasswordHasher
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  Metrics
	nowFunc  func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for internal failure reasons.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService constructs an auth service. tokenTTL is the lifetime stamped on
// every issued token.
func NewService(users domain.UserRepository, tokens TokenCodec, hasher PasswordHasher, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
		metrics:  nopMetrics{},
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user holding the default role and returns it.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: hashed,
		Roles:        []string{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

// Login verifies credentials and returns a signed token carrying the user's
// authorities. Unknown users and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		s.metrics.RecordLogin(false)
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, creds.Username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.metrics.RecordLogin(false)
			return "", err
		}
		// Spend the same hashing effort as a real comparison.
		s.hasher.Verify(creds.Password, s.decoy())
		s.metrics.RecordLogin(false)
		return "", domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		s.metrics.RecordLogin(false)
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.ID, domain.Authorities(user.Roles), s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.metrics.RecordLogin(true)
	return token, nil
}

// Resolve decodes a bearer token and re-checks that its subject still exists.
// The returned principal carries the authorities embedded in the token.
func (s *Service) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, s.reject(err)
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.reject(domain.ErrSubjectNotFound)
		}
		return nil, s.reject(fmt.Errorf("resolving subject: %w", err))
	}
	if user.ID != claims.UserID {
		// Same name, different account: the original holder was removed.
		return nil, s.reject(domain.ErrSubjectNotFound)
	}

	authorities := make([]string, len(claims.Roles))
	copy(authorities, claims.Roles)

	return &domain.Principal{
		Subject:     claims.Subject,
		UserID:      claims.UserID,
		Authorities: authorities,
	}, nil
}

func (s *Service) reject(err error) error {
	reason := domain.TokenFailureReason(err)
	s.metrics.RecordTokenRejected(reason)
	if reason == "lookup_failed" {
		s.logger.Error("token subject lookup failed", "error", err)
	} else {
		s.logger.Debug("token rejected", "reason", reason)
	}
	return err
}

func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("generating decoy password hash", "error", err)
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

func validateUsername(username string) error {
	err := validation.Validate(username,
		validation.Required,
		validation.Length(3, 50),
		validation.Match(usernamePattern),
	)
	if err != nil {
		return fmt.Errorf("%w: username %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func validatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required,
		validation.By(func(value interface{}) error {
			n := len(value.(string))
			if n < 8 || n > 72 {
				return errors.New("must be between 8 and 72 bytes")
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: password %v", domain.ErrInvalidInput, err)
	}
	return nil
}
