package devauth

// Package devauth provides a simple, config-driven IdentityProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/url"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
)

const devAccessToken = "dev-access-token"

var _ ports.IdentityProvider = (*Provider)(nil)

// Config controls the dev auth provider behavior.
// Email is required; Name and Picture may be empty.
type Config struct {
	Email   string
	Name    string
	Picture string
	// CallbackPath is where the browser is sent instead of a real IdP.
	CallbackPath string // default /auth/callback
}

// Provider implements ports.IdentityProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback;
// the code is accepted as-is and the configured identity is returned.
// The allow-list still applies to the dev identity.
type Provider struct {
	user         domainauth.User
	callbackPath string
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	cb := cfg.CallbackPath
	if cb == "" {
		cb = "/auth/callback"
	}
	return &Provider{
		user: domainauth.User{
			Email:   cfg.Email,
			Name:    cfg.Name,
			Picture: cfg.Picture,
		},
		callbackPath: cb,
	}, nil
}

// AuthorizationURL returns a local callback URL carrying the state.
func (p *Provider) AuthorizationURL(state string) string {
	if state == "" {
		state = randomString(24)
	}
	q := url.Values{}
	q.Set("code", "dev")
	q.Set("state", state)
	return p.callbackPath + "?" + q.Encode()
}

// ExchangeCode accepts any non-empty code.
func (p *Provider) ExchangeCode(_ context.Context, code string) (string, error) {
	if code == "" {
		return "", &domainauth.TokenExchangeError{Err: errors.New("authorization code is required")}
	}
	return devAccessToken, nil
}

// FetchIdentity returns the configured identity for the token issued by ExchangeCode.
func (p *Provider) FetchIdentity(_ context.Context, accessToken string) (domainauth.User, error) {
	if accessToken != devAccessToken {
		return domainauth.User{}, &domainauth.IdentityFetchError{Err: errors.New("unknown access token")}
	}
	return p.user, nil
}

func randomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
