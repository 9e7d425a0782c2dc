package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/http/sessioncookie"
	"github.com/tenugui-collection/tenugui-api/internal/observability/metrics"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
	"github.com/tenugui-collection/tenugui-api/internal/service"
)

const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 10 * time.Minute
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(returnTo string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc      AuthServiceInterface
	Guards   *Guards
	Cookies  *sessioncookie.Codec
	Pages    *Pages
	Metrics  statsd.Sink
	Provider string // provider name used in logs and metric tags
	// CookieDomain and InsecureCookies apply to the short-lived oauth_state cookie.
	CookieDomain    string
	InsecureCookies bool
	Logger          *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Auth dispatches the login and logout entry points.
// GET /auth?action=login|logout[&returnTo=<path>].
func (h *AuthHandlers) Auth(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case "login":
		h.login(w, r)
	case "logout":
		h.logout(w, r)
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_action",
			Err:     fmt.Errorf("unsupported action %q", action),
		})
	}
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.BeginLogin(r.URL.Query().Get("returnTo"))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		h.Pages.Failure(w, r)
		return
	}

	h.setStateCookie(w, r, result.State, stateCookieMaxAge)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		h.logger().InfoContext(r.Context(), "provider returned error", "error", providerErr)
	}

	var expected string
	if c, err := r.Cookie(stateCookieName); err == nil {
		expected = c.Value
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:          q.Get("code"),
		State:         q.Get("state"),
		ExpectedState: expected,
	})
	state := domainauth.LoginFailed
	if result != nil {
		state = result.State
	}
	metrics.EmitLoginOutcome(h.Metrics, metrics.LoginMetric{
		Provider: h.Provider,
		State:    state,
		Duration: time.Since(start),
		Err:      err,
	})

	switch {
	case err == nil && state == domainauth.LoginAuthenticated:
		h.logger().InfoContext(r.Context(), "login succeeded", "email", result.User.Email)
		h.setStateCookie(w, r, "", -1)
		w.Header().Add("Set-Cookie", h.Cookies.Encode(result.Session.ID))
		http.Redirect(w, r, service.SafeReturnPath(result.ReturnTo), http.StatusFound)
	case state == domainauth.LoginDenied:
		var denied *domainauth.AccessDeniedError
		email := ""
		if errors.As(err, &denied) {
			email = denied.Email
		}
		h.logger().WarnContext(r.Context(), "login denied by allow-list", "email", email)
		// Denial has no side effects; the state cookie expires on its own.
		h.Pages.Denied(w, r, email)
	default:
		h.logger().ErrorContext(r.Context(), "login failed", "error", err, "state", string(state))
		h.setStateCookie(w, r, "", -1)
		h.Pages.Failure(w, r)
	}
}

// logout deletes the server-side session, clears the cookie and redirects.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(r)
	w.Header().Add("Set-Cookie", h.Cookies.Clear())
	http.Redirect(w, r, service.SafeReturnPath(r.URL.Query().Get("returnTo")), http.StatusFound)
}

// APILogout is the JSON logout for API clients.
// POST /api/auth/logout.
func (h *AuthHandlers) APILogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(r)
	w.Header().Add("Set-Cookie", h.Cookies.Clear())
	WriteJSON(w, http.StatusOK, domainauth.Anonymous())
}

func (h *AuthHandlers) endSession(r *http.Request) {
	id, ok := h.Cookies.Extract(r.Header.Get("Cookie"))
	if !ok {
		return
	}
	err := h.Svc.Logout(r.Context(), id)
	if err != nil {
		// The cookie is cleared regardless; the record expires on its own.
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}
	metrics.EmitLogout(h.Metrics, err)
}

// Me returns the caller's AuthState.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Guards.AuthStateOptional(r))
}

// Home renders the landing page for a signed-in user. Mounted behind RequirePage.
// GET /.
func (h *AuthHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.Pages.Home(w, r, UserFromContext(r.Context()))
}

// setStateCookie writes the oauth_state cookie; a negative maxAge deletes it.
func (h *AuthHandlers) setStateCookie(w http.ResponseWriter, r *http.Request, value string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/auth",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge / time.Second),
	}
	if maxAge < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0).UTC()
	}
	http.SetCookie(w, c)
}

func (h *AuthHandlers) isSecure(r *http.Request) bool {
	if h.InsecureCookies {
		return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	}
	return true
}
