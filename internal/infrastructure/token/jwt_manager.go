package token

import (
	"errors"
	"fmt"
	"time"

	domain "taskmanager/backend/internal/domain/auth"
	usecase "taskmanager/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager issues and validates HS256 JWT tokens.
type JWTManager struct {
	secret  []byte
	issuer  string
	nowFunc func() time.Time
}

// Option customises a JWTManager.
type Option func(*JWTManager)

// WithTimeFunc overrides the clock used for issued-at, expiry and validation.
func WithTimeFunc(now func() time.Time) Option {
	return func(m *JWTManager) {
		if now != nil {
			m.nowFunc = now
		}
	}
}

// NewJWTManager constructs a manager around an immutable signing secret.
func NewJWTManager(secret []byte, issuer string, opts ...Option) *JWTManager {
	key := make([]byte, len(secret))
	copy(key, secret)

	m := &JWTManager{
		secret:  key,
		issuer:  issuer,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure JWTManager implements the TokenCodec interface.
var _ usecase.TokenCodec = (*JWTManager)(nil)

// Claims represents token claims.
type Claims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issue creates a signed JWT for subject. A zero ttl yields a token that is
// already expired on the next decode. A positive ttl is honoured in full: the
// exp claim has whole-second precision, so it is rounded up, never down.
func (m *JWTManager) Issue(subject string, userID int64, roles []string, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", errors.New("token ttl must not be negative")
	}
	if roles == nil {
		roles = []string{}
	}

	now := m.nowFunc().UTC()
	claims := Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt(now, ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func expiresAt(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if ttl == 0 {
		return exp
	}
	if whole := exp.Truncate(time.Second); whole.Before(exp) {
		return whole.Add(time.Second)
	}
	return exp
}

// Decode verifies the signature, then expiry, then returns the claims.
func (m *JWTManager) Decode(tokenString string) (*usecase.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenMalformed
	}
	if claims.Subject == "" || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}

	out := &usecase.Claims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Roles:   claims.Roles,
	}
	if out.Roles == nil {
		out.Roles = []string{}
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
