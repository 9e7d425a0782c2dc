package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when the OAuth state presented on callback does
// not match the one issued at login.
var ErrInvalidState = errors.New("invalid oauth state")

// TokenExchangeError reports that the provider rejected the authorization code.
type TokenExchangeError struct {
	StatusCode int
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// IdentityFetchError reports that the user-info call failed or returned no email.
type IdentityFetchError struct {
	Err error
}

func (e *IdentityFetchError) Error() string {
	return fmt.Sprintf("identity fetch failed: %v", e.Err)
}

func (e *IdentityFetchError) Unwrap() error { return e.Err }

// AccessDeniedError reports a valid identity whose email is not on the allow-list.
type AccessDeniedError struct {
	Email string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied for %q", e.Email)
}
