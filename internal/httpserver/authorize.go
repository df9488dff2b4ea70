package httpserver

import (
	"net/http"

	authdomain "taskmanager/backend/internal/domain/auth"
)

// Denial kinds reported to metrics.
const (
	denialUnauthenticated = "unauthenticated"
	denialForbidden       = "forbidden"
)

// DenialRecorder counts guard rejections.
type DenialRecorder interface {
	RecordAccessDenied(kind string)
}

// RequireRole guards next with the conjunction of roles. Any denial,
// including a request with no principal, produces 403 "access denied"
// without naming the missing role.
func RequireRole(rec DenialRecorder, roles ...string) func(http.Handler) http.Handler {
	required := append([]string(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())
			if authdomain.RequireAll(principal, required...) == authdomain.Deny {
				if rec != nil {
					rec.RecordAccessDenied(denialForbidden)
				}
				writeError(w, http.StatusForbidden, authdomain.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated guards next with presence of a principal only and
// answers 401 "unauthenticated" otherwise.
func RequireAuthenticated(rec DenialRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				if rec != nil {
					rec.RecordAccessDenied(denialUnauthenticated)
				}
				writeError(w, http.StatusUnauthorized, authdomain.ErrUnauthenticated.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
