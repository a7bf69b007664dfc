// Package auth provides credential verification: JWT parsing, password
// hashing, and the request-context carrier for the authenticated principal.
package auth

import (
	"context"

	"github.com/rosterd/rosterd/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// principalKey is the context key for the authenticated principal.
const principalKey contextKey = "principal"

// ContextWithPrincipal attaches the authenticated principal to the context.
// Only the guard should call this; the principal never carries the
// credential hash.
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil if authentication has not run.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}
