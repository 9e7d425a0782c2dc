package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://tenugui.example.com/auth/callback")
	t.Setenv("OAUTH_SCOPE", "openid email profile")
	t.Setenv("OAUTH_HTTP_TIMEOUT", "10s")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_NAME", "Dev User")
	t.Setenv("SESSION_DURATION", "24h")
	t.Setenv("SESSION_SECRET", "pepper")
	t.Setenv("SESSION_COOKIE_NAME", "session")
	t.Setenv("SESSION_KEY_PREFIX", "session:")
	t.Setenv("ALLOWED_EMAILS", "a@x.com, b@x.com")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://tenugui.example.com/auth/callback",
			Scope:        "openid email profile",
			HTTPTimeout:  10 * time.Second,
		},
		DevAuth: DevAuthConfig{
			Email: "dev@example.com",
			Name:  "Dev User",
		},
		Session: SessionConfig{
			Duration:   24 * time.Hour,
			Secret:     "pepper",
			CookieName: "session",
			KeyPrefix:  "session:",
		},
		AllowedEmails: "a@x.com, b@x.com",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var mode AuthMode
	if err := mode.UnmarshalText([]byte("MOCK")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != AuthModeMock {
		t.Fatalf("expected mock mode, got %q", mode)
	}

	if err := mode.UnmarshalText([]byte("saml")); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      AuthConfig
		wantErrs []string
	}{
		{
			name: "complete oauth config",
			cfg: AuthConfig{
				Mode: AuthModeOAuth,
				OAuth: OAuthConfig{
					ClientID:     "id",
					ClientSecret: "secret",
					RedirectURL:  "https://app.example.com/auth/callback",
				},
				Session: SessionConfig{Duration: time.Hour},
			},
		},
		{
			name: "missing oauth credentials",
			cfg: AuthConfig{
				Mode:    AuthModeOAuth,
				Session: SessionConfig{Duration: time.Hour},
			},
			wantErrs: []string{"OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET", "OAUTH_REDIRECT_URL"},
		},
		{
			name: "non-positive session duration",
			cfg: AuthConfig{
				Mode:    AuthModeMock,
				DevAuth: DevAuthConfig{Email: "dev@example.com"},
			},
			wantErrs: []string{"SESSION_DURATION"},
		},
		{
			name: "mock mode without email",
			cfg: AuthConfig{
				Mode:    AuthModeMock,
				Session: SessionConfig{Duration: time.Hour},
			},
			wantErrs: []string{"DEV_AUTH_EMAIL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected errors mentioning %v", tt.wantErrs)
			}
			for _, want := range tt.wantErrs {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error to mention %s, got %q", want, err.Error())
				}
			}
		})
	}
}

func TestAuthConfig_Sanitize(t *testing.T) {
	cfg := AuthConfig{
		OAuth: OAuthConfig{
			ClientID: "  id  ",
			Scope:    " ",
		},
		Session: SessionConfig{CookieName: " "},
	}

	cfg.Sanitize()

	if cfg.OAuth.ClientID != "id" {
		t.Fatalf("expected client id to be trimmed, got %q", cfg.OAuth.ClientID)
	}
	if cfg.OAuth.Scope != "openid email profile" {
		t.Fatalf("expected default scope, got %q", cfg.OAuth.Scope)
	}
	if cfg.OAuth.HTTPTimeout != 15*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.OAuth.HTTPTimeout)
	}
	if cfg.Session.CookieName != "session" {
		t.Fatalf("expected default cookie name, got %q", cfg.Session.CookieName)
	}
	if cfg.Session.KeyPrefix != "session:" {
		t.Fatalf("expected default key prefix, got %q", cfg.Session.KeyPrefix)
	}
}

func TestRedisConfig_Validate(t *testing.T) {
	cfg := RedisConfig{URI: " "}
	cfg.Sanitize()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "REDIS_URI") {
		t.Fatalf("expected REDIS_URI error, got %v", err)
	}

	cfg = RedisConfig{UseSentinel: true, SentinelNodes: []string{" ", ""}}
	cfg.Sanitize()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "REDIS_SENTINEL_NODES") {
		t.Fatalf("expected REDIS_SENTINEL_NODES error, got %v", err)
	}

	cfg = RedisConfig{UseCluster: true, ClusterNodes: []string{" redis-1:6379 "}}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClusterNodes[0] != "redis-1:6379" {
		t.Fatalf("expected trimmed node, got %q", cfg.ClusterNodes[0])
	}
}

func TestAppConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := AppConfig{
		Auth:  AuthConfig{Mode: AuthModeOAuth},
		Redis: RedisConfig{},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"OAUTH_CLIENT_ID", "SESSION_DURATION", "REDIS_URI"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %q", want, err.Error())
		}
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}
	if cfg.Prefix != "tenugui" {
		t.Fatalf("expected default prefix, got %q", cfg.Prefix)
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{ShutdownTimeout: -time.Second}
	cfg.Sanitize()
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}
