package google

// Package google implements the OAuth 2.0 authorization-code flow against
// Google's identity endpoints.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// UserInfoURL is Google's OpenID Connect userinfo endpoint.
const UserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// DefaultTimeout bounds every outbound call when Config.HTTPTimeout is unset.
const DefaultTimeout = 15 * time.Second

// DefaultScopes are requested when Config.Scope is empty.
var DefaultScopes = []string{"openid", "email", "profile"}

var _ ports.IdentityProvider = (*Provider)(nil)

// randomState supplies the state used when the caller passes none.
var randomState = func() (string, error) { return generateRandomString(32) }

// Config holds configuration for the Google provider.
// Endpoint URLs default to Google's and exist for tests and compatible IdPs.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	HTTPTimeout  time.Duration
	HTTPClient   *http.Client // Optional, overrides HTTPTimeout
}

// Provider implements ports.IdentityProvider using golang.org/x/oauth2 for the
// code exchange and go-oidc for the userinfo call.
type Provider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	oidcProvider *gooidc.Provider
}

// NewProvider creates a new Google provider. No network calls are made.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	endpoint := googleoauth.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	// Google expects client credentials in the form body; fixing the style
	// avoids the auto-detect retry on a rejected code.
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = UserInfoURL
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = append([]string(nil), DefaultScopes...)
	}

	ctx := gooidc.ClientContext(context.Background(), httpClient)
	op := (&gooidc.ProviderConfig{
		AuthURL:     endpoint.AuthURL,
		TokenURL:    endpoint.TokenURL,
		UserInfoURL: userInfoURL,
	}).NewProvider(ctx)

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient:   httpClient,
		oidcProvider: op,
	}, nil
}

// AuthorizationURL returns the consent-screen URL. An empty state is replaced
// by a random one.
func (p *Provider) AuthorizationURL(state string) string {
	if state == "" {
		generated, err := randomState()
		if err != nil || generated == "" {
			generated = uuid.NewString()
		}
		state = generated
	}
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode trades an authorization code for an access token.
// Rejections by the token endpoint surface as *domainauth.TokenExchangeError.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", &domainauth.TokenExchangeError{Err: errors.New("authorization code is required")}
	}

	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		exchangeErr := &domainauth.TokenExchangeError{Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			exchangeErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return "", exchangeErr
	}
	if token.AccessToken == "" {
		return "", &domainauth.TokenExchangeError{Err: errors.New("token response has no access_token")}
	}
	return token.AccessToken, nil
}

// userInfoClaims is the subset of the userinfo payload we keep.
type userInfoClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// FetchIdentity reads the user profile for an access token.
// Failures and profiles without a verified email surface as *domainauth.IdentityFetchError.
func (p *Provider) FetchIdentity(ctx context.Context, accessToken string) (domainauth.User, error) {
	if accessToken == "" {
		return domainauth.User{}, &domainauth.IdentityFetchError{Err: errors.New("access token is required")}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	ui, err := p.oidcProvider.UserInfo(p.clientContext(ctx), ts)
	if err != nil {
		return domainauth.User{}, &domainauth.IdentityFetchError{Err: fmt.Errorf("fetch user info: %w", err)}
	}

	var claims userInfoClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domainauth.User{}, &domainauth.IdentityFetchError{Err: fmt.Errorf("decode user info: %w", claimsErr)}
	}
	email := firstNonEmpty(claims.Email, ui.Email)
	if email == "" {
		return domainauth.User{}, &domainauth.IdentityFetchError{Err: errors.New("user info has no email")}
	}
	if !claims.EmailVerified && !ui.EmailVerified {
		return domainauth.User{}, &domainauth.IdentityFetchError{Err: fmt.Errorf("email %q is not verified", email)}
	}

	return domainauth.User{
		Email:   email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		return "", errors.New("short random read")
	}
	return s[:length], nil
}
