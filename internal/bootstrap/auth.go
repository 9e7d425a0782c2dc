package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/tenugui-collection/tenugui-api/config"
	"github.com/tenugui-collection/tenugui-api/internal/adapters/allowlist"
	"github.com/tenugui-collection/tenugui-api/internal/adapters/devauth"
	"github.com/tenugui-collection/tenugui-api/internal/adapters/google"
	redisadapter "github.com/tenugui-collection/tenugui-api/internal/adapters/redis"
	httpx "github.com/tenugui-collection/tenugui-api/internal/http"
	"github.com/tenugui-collection/tenugui-api/internal/http/sessioncookie"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
	"github.com/tenugui-collection/tenugui-api/internal/service"
)

// AuthConfig contains dependencies for building the auth components.
type AuthConfig struct {
	App         *config.AppConfig
	RedisClient redis.UniversalClient
	// Backend overrides RedisClient; used by tests.
	Backend ports.KeyValueStore
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// AuthComponents is the wired auth gate.
type AuthComponents struct {
	Service  *service.AuthService
	Sessions *service.SessionStore
	Policy   *allowlist.StaticPolicy
	Guards   *httpx.Guards
	Cookies  *sessioncookie.Codec
	Provider string
}

// BuildAuth wires the identity provider, session store, allow-list and
// guards from configuration.
func BuildAuth(cfg AuthConfig) (*AuthComponents, error) {
	if cfg.App == nil {
		return nil, errors.New("app config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	authCfg := cfg.App.Auth

	backend := cfg.Backend
	if backend == nil {
		if cfg.RedisClient == nil {
			return nil, errors.New("session backend is required")
		}
		backend = redisadapter.NewKVStoreWithPrefix(cfg.RedisClient, authCfg.Session.KeyPrefix)
	}

	provider, name, err := buildIdentityProvider(authCfg, logger)
	if err != nil {
		return nil, err
	}

	sessions := service.NewSessionStore(service.SessionStoreOptions{
		Backend:  backend,
		Duration: authCfg.Session.Duration,
		Secret:   authCfg.Session.Secret,
		Logger:   logger,
	})

	policy := allowlist.NewStaticPolicy(authCfg.AllowedEmails)
	if policy.Len() == 0 {
		logger.Warn("ALLOWED_EMAILS is empty; every login will be denied")
	}

	cookies := sessioncookie.New(sessioncookie.Options{
		Name:     authCfg.Session.CookieName,
		MaxAge:   sessions.Duration(),
		Domain:   cfg.App.HTTP.CookieDomain,
		Insecure: insecureCookies(cfg.App),
	})

	return &AuthComponents{
		Service: service.NewAuthService(service.AuthServiceOptions{
			Provider: provider,
			Sessions: sessions,
			Policy:   policy,
			Logger:   logger,
		}),
		Sessions: sessions,
		Policy:   policy,
		Guards: httpx.NewGuards(httpx.GuardsOptions{
			Sessions: sessions,
			Cookies:  cookies,
			Metrics:  cfg.Metrics,
			Logger:   logger,
		}),
		Cookies:  cookies,
		Provider: name,
	}, nil
}

//nolint:ireturn // the concrete provider depends on AUTH_MODE.
func buildIdentityProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.IdentityProvider, string, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		p, err := devauth.NewProvider(devauth.Config{
			Email:   cfg.DevAuth.Email,
			Name:    cfg.DevAuth.Name,
			Picture: cfg.DevAuth.Picture,
		})
		if err != nil {
			return nil, "", fmt.Errorf("init dev auth provider: %w", err)
		}
		logger.Warn("dev auth enabled; do not use in production", "email", cfg.DevAuth.Email)
		return p, "dev", nil
	case config.AuthModeOAuth, "":
		p, err := google.NewProvider(google.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			AuthURL:      cfg.OAuth.AuthURL,
			TokenURL:     cfg.OAuth.TokenURL,
			UserInfoURL:  cfg.OAuth.UserInfoURL,
			HTTPTimeout:  cfg.OAuth.HTTPTimeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("init google provider: %w", err)
		}
		return p, "google", nil
	default:
		return nil, "", fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// insecureCookies drops the Secure attribute only for local development.
func insecureCookies(cfg *config.AppConfig) bool {
	return cfg.IsDev && cfg.HTTP.InsecureCookies
}
