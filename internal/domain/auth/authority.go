package auth

import "strings"

// AuthorityPrefix is prepended to a role name to form the authority carried in
// tokens and checked by guards.
const AuthorityPrefix = "ROLE_"

// Authority returns the authority form of role ("ADMIN" -> "ROLE_ADMIN").
// Issuance and enforcement both go through this function.
func Authority(role string) string {
	return AuthorityPrefix + role
}

// Authorities maps every role to its authority form, preserving order.
func Authorities(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, Authority(role))
	}
	return out
}

// IsAuthority reports whether s already carries the authority prefix.
func IsAuthority(s string) bool {
	return strings.HasPrefix(s, AuthorityPrefix)
}
