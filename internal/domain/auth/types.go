package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// User is the authenticated principal returned by the identity provider.
// Email is the unique identifier; Name and Picture are optional profile data.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier and doubles as the cookie value.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AuthState is the request-scoped view of who is calling.
// It is derived on every request and never persisted.
type AuthState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

// Anonymous returns the unauthenticated AuthState.
func Anonymous() AuthState {
	return AuthState{}
}

// Authenticated returns an AuthState carrying a copy of u.
func Authenticated(u User) AuthState {
	return AuthState{IsAuthenticated: true, User: &u}
}

// LoginState names a step of the OAuth login flow.
type LoginState string

const (
	LoginAnonymous        LoginState = "anonymous"
	LoginAwaitingProvider LoginState = "awaiting_provider"
	LoginExchanging       LoginState = "exchanging"
	LoginPolicyCheck      LoginState = "policy_check"
	LoginAuthenticated    LoginState = "authenticated"
	LoginDenied           LoginState = "denied"
	LoginFailed           LoginState = "failed"
)

// Terminal reports whether no further transition is possible from s.
// A failed or denied login must be restarted from LoginAnonymous.
func (s LoginState) Terminal() bool {
	switch s {
	case LoginAuthenticated, LoginDenied, LoginFailed:
		return true
	default:
		return false
	}
}
