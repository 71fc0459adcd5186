package auth

import (
	"context"
	"time"
)

// Identity is the authenticated caller as resolved from a session cookie.
type Identity struct {
	ID    string
	Email string

	// SessionID references the backing sessions row.
	SessionID string
	// ExpiresAt is the current session expiry, after any refresh.
	ExpiresAt time.Time
	// Refreshed is set when the resolver extended the session during this
	// lookup and the cookie must be re-issued.
	Refreshed bool
}

// AdministratorProfile is the authorization record for an identity.
type AdministratorProfile struct {
	ID       string
	FullName string
	Role     string
}

// Principal is an identity that holds an administrator profile. It is attached
// to the request context of every request the route guard allows onto a
// protected path.
type Principal struct {
	Identity Identity
	Profile  AdministratorProfile
}

type principalContextKey struct{}

// SetPrincipal stores the principal on the context for downstream handlers.
func SetPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the principal set by the route guard.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}
