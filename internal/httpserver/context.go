package httpserver

import (
	"context"

	authdomain "taskmanager/backend/internal/domain/auth"
)

type ctxKeyPrincipal struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *authdomain.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal{}, p)
}

// PrincipalFromContext returns the principal attached by the identity
// resolver, if any.
func PrincipalFromContext(ctx context.Context) (*authdomain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal{}).(*authdomain.Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
