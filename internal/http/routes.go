package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tenugui-collection/tenugui-api/internal/http/sessioncookie"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth    AuthServiceInterface
	Guards  *Guards
	Cookies *sessioncookie.Codec
	Pages   *Pages
	Metrics statsd.Sink
	// Provider names the identity provider in logs and metrics.
	Provider        string
	CookieDomain    string
	InsecureCookies bool
	// Ready reports whether the session backend is reachable (optional).
	Ready  func(context.Context) error
	Logger *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookies := services.Cookies
	if cookies == nil {
		cookies = sessioncookie.New(sessioncookie.Options{})
	}
	pages := services.Pages
	if pages == nil {
		pages = MustPages(logger)
	}

	mux := http.NewServeMux()
	authHandlers := &AuthHandlers{
		Svc:             services.Auth,
		Guards:          services.Guards,
		Cookies:         cookies,
		Pages:           pages,
		Metrics:         services.Metrics,
		Provider:        services.Provider,
		CookieDomain:    services.CookieDomain,
		InsecureCookies: services.InsecureCookies,
		Logger:          logger,
	}

	registerAuthRoutes(mux, authHandlers, services.Guards)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Ready, logger))

	return SecurityHeaders(mux)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, guards *Guards) {
	mux.HandleFunc("GET /auth", h.Auth)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.Handle("GET /api/auth/me", http.HandlerFunc(h.Me))
	mux.Handle("POST /api/auth/logout", guards.RequireAction(http.HandlerFunc(h.APILogout)))
	mux.Handle("GET /{$}", guards.RequirePage(http.HandlerFunc(h.Home)))
}
