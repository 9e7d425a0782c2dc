package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// IdentityProvider drives the OAuth authorization-code flow against an IdP.
type IdentityProvider interface {
	// AuthorizationURL returns the provider URL the browser is sent to.
	// An empty state is replaced by a random one.
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchIdentity reads the user profile for an access token.
	FetchIdentity(ctx context.Context, accessToken string) (domainauth.User, error)
}

// KeyValueStore is the durable backend behind the session store.
// Per-key operations must be atomic; no multi-key transactions are needed.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SessionStore persists and retrieves user sessions.
// Get returns a nil user, not an error, for missing or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, user domainauth.User) (domainauth.Session, error)
	Get(ctx context.Context, id string) (*domainauth.User, error)
	Delete(ctx context.Context, id string) error
}

// AccessPolicy decides whether an authenticated email may use the application.
type AccessPolicy interface {
	IsAllowed(email string) bool
}
