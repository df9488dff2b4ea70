package auth

import "time"

// Claims is the decoded content of a token.
type Claims struct {
	Subject   string
	UserID    int64
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec abstracts token issuance and verification.
//
// Decode must verify the signature before trusting any claim and return one of
// the domain errors ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired on
// failure.
type TokenCodec interface {
	Issue(subject string, userID int64, roles []string, ttl time.Duration) (string, error)
	Decode(token string) (*Claims, error)
}

// PasswordHasher hashes and verifies passwords with a salted adaptive hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Metrics receives authentication outcomes. Labels never reach clients.
type Metrics interface {
	RecordLogin(success bool)
	RecordTokenRejected(reason string)
}

type nopMetrics struct{}

func (nopMetrics) RecordLogin(bool)           {}
func (nopMetrics) RecordTokenRejected(string) {}
