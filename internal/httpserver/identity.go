package httpserver

import (
	"context"
	"net/http"
	"strings"

	authdomain "taskmanager/backend/internal/domain/auth"
)

// IdentityResolver turns a bearer token into a principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*authdomain.Principal, error)
}

// ResolveIdentity attaches a principal to the request context when the
// request carries a bearer token that resolves. It never rejects: missing,
// malformed, forged or expired tokens simply leave the request
// unauthenticated for the guards downstream to decide.
func ResolveIdentity(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.Resolve(r.Context(), token)
			if err != nil || principal == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
