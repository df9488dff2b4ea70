package auth

import (
	"errors"
	"regexp"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure. Unknown usernames and
	// wrong passwords both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameExists signals a duplicate username registration.
	ErrUsernameExists = errors.New("username already registered")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the provided role name is not acceptable.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidInput wraps registration payload validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTokenMalformed means the token could not be parsed.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature means the token signature does not verify under the current key.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenExpired means the token expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrSubjectNotFound means the token is valid but its subject no longer resolves.
	ErrSubjectNotFound = errors.New("token subject not found")

	// ErrUnauthenticated is the single external outcome for missing or invalid tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is the single external outcome for insufficient roles.
	ErrForbidden = errors.New("access denied")
)

// Role names known to the application. Any other well-formed name may still be
// assigned by an administrator.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

var roleNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// User is the credential record persisted in storage.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy of u without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	if u.Roles != nil {
		out.Roles = append([]string(nil), u.Roles...)
	}
	return &out
}

// HasRole reports whether the stored record carries role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Username string
	Password string
}

// ValidateRoleName checks that name is a plain role name, not an authority.
func ValidateRoleName(name string) error {
	if !roleNamePattern.MatchString(name) || IsAuthority(name) {
		return ErrInvalidRole
	}
	return nil
}

// TokenFailureReason maps a token decode or resolution error to a short label
// for logs and metrics. It is never sent to clients.
func TokenFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrSubjectNotFound):
		return "subject_not_found"
	default:
		return "lookup_failed"
	}
}
