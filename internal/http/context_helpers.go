package httpx

import (
	"context"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
)

// authStateKey is an unexported context key type to avoid collisions across packages.
type authStateKey struct{}

// SetAuthStateInContext returns a child context that carries the resolved AuthState.
func SetAuthStateInContext(ctx context.Context, state domainauth.AuthState) context.Context {
	return context.WithValue(ctx, authStateKey{}, state)
}

// AuthStateFromContext returns the AuthState stored by a guard middleware and
// whether one was present.
func AuthStateFromContext(ctx context.Context) (domainauth.AuthState, bool) {
	state, ok := ctx.Value(authStateKey{}).(domainauth.AuthState)
	return state, ok
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *domainauth.User {
	state, ok := AuthStateFromContext(ctx)
	if !ok || !state.IsAuthenticated {
		return nil
	}
	return state.User
}
