package auth

// Principal is the authenticated identity attached to a single request.
type Principal struct {
	Subject     string   `json:"subject"`
	UserID      int64    `json:"userId"`
	Authorities []string `json:"authorities"`
}

// HasAuthority reports whether the principal carries authority (exact, case-sensitive).
func (p *Principal) HasAuthority(authority string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Deny rejects the guarded operation.
	Deny Decision = iota
	// Allow lets the guarded operation run.
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Require allows the principal only when it holds the authority form of role.
// A nil principal is always denied.
func Require(p *Principal, role string) Decision {
	if p == nil || !p.HasAuthority(Authority(role)) {
		return Deny
	}
	return Allow
}

// RequireAll is the conjunction of Require over roles. With no roles it only
// requires a principal to be present.
func RequireAll(p *Principal, roles ...string) Decision {
	if p == nil {
		return Deny
	}
	for _, role := range roles {
		if Require(p, role) == Deny {
			return Deny
		}
	}
	return Allow
}
