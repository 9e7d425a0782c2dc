package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tenugui-collection/tenugui-api/config"
	httpx "github.com/tenugui-collection/tenugui-api/internal/http"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config  *config.AppConfig
	Auth    *AuthComponents
	Metrics statsd.Sink
	Ready   func(context.Context) error
	Logger  *slog.Logger
}

// NewHTTPServer builds the HTTP server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Auth == nil {
		return nil, errors.New("http server: auth components are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	pages, err := httpx.NewPages(logger)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	handler := buildHTTPHandler(logger, httpx.RouterServices{
		Auth:            cfg.Auth.Service,
		Guards:          cfg.Auth.Guards,
		Cookies:         cfg.Auth.Cookies,
		Pages:           pages,
		Metrics:         cfg.Metrics,
		Provider:        cfg.Auth.Provider,
		CookieDomain:    appCfg.HTTP.CookieDomain,
		InsecureCookies: insecureCookies(appCfg),
		Ready:           cfg.Ready,
		Logger:          logger,
	})

	return newServer(handler, appCfg.HTTP.Addr), nil
}

// Order: Recover -> Logging -> Router.
func buildHTTPHandler(logger *slog.Logger, services httpx.RouterServices) http.Handler {
	h := httpx.NewRouter(services)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)
	return h
}

func newServer(handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}
