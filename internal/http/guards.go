package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/http/sessioncookie"
	"github.com/tenugui-collection/tenugui-api/internal/observability/metrics"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
	"github.com/tenugui-collection/tenugui-api/internal/service"
)

// LoginPath is the login entry point unauthenticated page requests are sent to.
const LoginPath = "/auth"

// SessionReader looks up the user behind a session id.
type SessionReader interface {
	Get(ctx context.Context, id string) (*domainauth.User, error)
}

// GuardsOptions groups dependencies for Guards.
type GuardsOptions struct {
	Sessions SessionReader
	Cookies  *sessioncookie.Codec
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// Guards resolves the caller's AuthState and enforces it on routes.
type Guards struct {
	sessions SessionReader
	cookies  *sessioncookie.Codec
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewGuards constructs Guards.
func NewGuards(opts GuardsOptions) *Guards {
	g := &Guards{
		sessions: opts.Sessions,
		cookies:  opts.Cookies,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if g.cookies == nil {
		g.cookies = sessioncookie.New(sessioncookie.Options{})
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Resolve derives the AuthState for r. It never fails: a missing cookie,
// an unknown or expired session and a backend error all resolve to anonymous.
func (g *Guards) Resolve(r *http.Request) (state domainauth.AuthState) {
	state = domainauth.Anonymous()
	if r == nil {
		return state
	}

	id, ok := g.cookies.Extract(r.Header.Get("Cookie"))
	if !ok {
		return state
	}

	defer func() {
		if rec := recover(); rec != nil {
			g.logger.ErrorContext(r.Context(), "session lookup panicked", "panic", rec)
			metrics.EmitSessionLookup(g.metrics, metrics.ResultError)
			state = domainauth.Anonymous()
		}
	}()

	user, err := g.sessions.Get(r.Context(), id)
	if err != nil {
		g.logger.WarnContext(r.Context(), "session lookup failed", "error", err)
		metrics.EmitSessionLookup(g.metrics, metrics.ResultError)
		return domainauth.Anonymous()
	}
	if user == nil {
		metrics.EmitSessionLookup(g.metrics, metrics.ResultMiss)
		return domainauth.Anonymous()
	}

	metrics.EmitSessionLookup(g.metrics, metrics.ResultHit)
	return domainauth.Authenticated(*user)
}

// RequireAuth guards a page. Anonymous callers are redirected to the login
// entry point with the current request URI as returnTo and ok is false.
func (g *Guards) RequireAuth(w http.ResponseWriter, r *http.Request) (domainauth.AuthState, bool) {
	state := g.Resolve(r)
	if state.IsAuthenticated {
		return state, true
	}
	http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
	return state, false
}

// RequireAuthForAction guards a non-navigational endpoint. Anonymous callers
// get a bare 401 and ok is false.
func (g *Guards) RequireAuthForAction(w http.ResponseWriter, r *http.Request) (domainauth.AuthState, bool) {
	state := g.Resolve(r)
	if state.IsAuthenticated {
		return state, true
	}
	writeUnauthorized(w)
	return state, false
}

// AuthStateOptional resolves the AuthState without enforcing anything.
func (g *Guards) AuthStateOptional(r *http.Request) domainauth.AuthState {
	return g.Resolve(r)
}

// RequirePage wraps next with RequireAuth and stores the AuthState in the request context.
func (g *Guards) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ok := g.RequireAuth(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(SetAuthStateInContext(r.Context(), state)))
	})
}

// RequireAction wraps next with RequireAuthForAction and stores the AuthState in the request context.
func (g *Guards) RequireAction(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ok := g.RequireAuthForAction(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(SetAuthStateInContext(r.Context(), state)))
	})
}

// Optional stores the resolved AuthState in the request context and always calls next.
func (g *Guards) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := g.AuthStateOptional(r)
		next.ServeHTTP(w, r.WithContext(SetAuthStateInContext(r.Context(), state)))
	})
}

// LoginURL builds the login entry URL that returns to returnTo afterwards.
func LoginURL(returnTo string) string {
	return LoginPath + "?action=login&returnTo=" + url.QueryEscape(service.SafeReturnPath(returnTo))
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = io.WriteString(w, "Unauthorized")
}
