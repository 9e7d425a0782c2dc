package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses Google OAuth for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth client configuration for the identity provider.
// Endpoint overrides exist for tests and non-Google deployments; empty values
// fall back to Google's published endpoints.
type OAuthConfig struct {
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	RedirectURL  string        `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string        `env:"SCOPE"         envDefault:"openid email profile"`
	AuthURL      string        `env:"AUTH_URL"`
	TokenURL     string        `env:"TOKEN_URL"`
	UserInfoURL  string        `env:"USERINFO_URL"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT"  envDefault:"15s"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email   string `env:"EMAIL"   envDefault:"dev@example.com"`
	Name    string `env:"NAME"    envDefault:"Dev User"`
	Picture string `env:"PICTURE"`
}

// SessionConfig controls the lifetime and naming of browser sessions.
type SessionConfig struct {
	// Duration is both the record expiry and the cookie Max-Age.
	Duration time.Duration `env:"DURATION" envDefault:"168h"`

	// Secret, when set, keys the HMAC used to derive backend keys from
	// session ids so raw cookie values never appear in the key space.
	Secret string `env:"SECRET"`

	// CookieName is the name of the session cookie.
	CookieName string `env:"COOKIE_NAME" envDefault:"session"`

	// KeyPrefix namespaces session records in the key-value store.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"session:"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Session configuration.
	Session SessionConfig `envPrefix:"SESSION_"`

	// AllowedEmails is the comma-separated allow-list of permitted emails.
	// An empty list denies every login.
	AllowedEmails string `env:"ALLOWED_EMAILS"`
}

// Sanitize trims whitespace from string settings and restores defaults that
// were explicitly blanked.
func (a *AuthConfig) Sanitize() {
	a.OAuth.ClientID = strings.TrimSpace(a.OAuth.ClientID)
	a.OAuth.RedirectURL = strings.TrimSpace(a.OAuth.RedirectURL)
	if strings.TrimSpace(a.OAuth.Scope) == "" {
		a.OAuth.Scope = "openid email profile"
	}
	if a.OAuth.HTTPTimeout <= 0 {
		a.OAuth.HTTPTimeout = 15 * time.Second
	}
	if strings.TrimSpace(a.Session.CookieName) == "" {
		a.Session.CookieName = "session"
	}
	if a.Session.KeyPrefix == "" {
		a.Session.KeyPrefix = "session:"
	}
}

// Validate returns an error naming each required setting that is missing.
func (a *AuthConfig) Validate() error {
	var errs []error
	if a.Session.Duration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION must be positive"))
	}

	switch a.Mode {
	case AuthModeMock:
		if strings.TrimSpace(a.DevAuth.Email) == "" {
			errs = append(errs, errors.New("missing config: DEV_AUTH_EMAIL"))
		}
	case AuthModeOAuth, "":
		if a.OAuth.ClientID == "" {
			errs = append(errs, errors.New("missing config: OAUTH_CLIENT_ID"))
		}
		if a.OAuth.ClientSecret == "" {
			errs = append(errs, errors.New("missing config: OAUTH_CLIENT_SECRET"))
		}
		if a.OAuth.RedirectURL == "" {
			errs = append(errs, errors.New("missing config: OAUTH_REDIRECT_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid AUTH_MODE: %q", a.Mode))
	}

	return errors.Join(errs...)
}
