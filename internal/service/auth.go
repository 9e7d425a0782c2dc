package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore
	Policy   ports.AccessPolicy
	Logger   *slog.Logger
}

// AuthService orchestrates the login flow by coordinating the identity
// provider, the access policy, and session persistence.
type AuthService struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	policy   ports.AccessPolicy
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		policy:   opts.Policy,
		logger:   logger,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL  string
	State    string
	ReturnTo string
}

// BeginLogin issues a fresh state carrying returnTo and returns the provider URL.
// Unsafe return paths are replaced with "/".
func (s *AuthService) BeginLogin(returnTo string) (*BeginLoginResult, error) {
	returnTo = SafeReturnPath(returnTo)
	nonce, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	state := EncodeState(nonce, returnTo)

	return &BeginLoginResult{
		AuthURL:  s.provider.AuthorizationURL(state),
		State:    state,
		ReturnTo: returnTo,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code string
	// State is the value the provider echoed back on the callback.
	State string
	// ExpectedState is the value issued by BeginLogin for this browser.
	ExpectedState string
}

// CompleteLoginResult reports how far the login flow got.
// Session is only set when State is LoginAuthenticated.
type CompleteLoginResult struct {
	State    domainauth.LoginState
	Session  domainauth.Session
	User     domainauth.User
	ReturnTo string
}

// CompleteLogin exchanges the code, fetches the identity, applies the access
// policy and, only when allowed, creates a session. The returned result is
// never nil and always carries a terminal state.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*CompleteLoginResult, error) {
	res := &CompleteLoginResult{State: domainauth.LoginAwaitingProvider, ReturnTo: "/"}

	if in.State == "" || in.ExpectedState == "" || in.State != in.ExpectedState {
		return s.fail(res, domainauth.ErrInvalidState)
	}
	returnTo, err := DecodeState(in.State)
	if err != nil {
		return s.fail(res, err)
	}
	res.ReturnTo = returnTo

	if in.Code == "" {
		return s.fail(res, errors.New("authorization code is required"))
	}

	res.State = domainauth.LoginExchanging
	token, err := s.provider.ExchangeCode(ctx, in.Code)
	if err != nil {
		return s.fail(res, fmt.Errorf("exchange authorization code: %w", err))
	}

	user, err := s.provider.FetchIdentity(ctx, token)
	if err != nil {
		return s.fail(res, fmt.Errorf("fetch identity: %w", err))
	}
	res.User = user

	res.State = domainauth.LoginPolicyCheck
	if s.policy == nil || !s.policy.IsAllowed(user.Email) {
		res.State = domainauth.LoginDenied
		return res, &domainauth.AccessDeniedError{Email: user.Email}
	}

	sess, err := s.sessions.Create(ctx, user)
	if err != nil {
		return s.fail(res, fmt.Errorf("create session: %w", err))
	}

	res.State = domainauth.LoginAuthenticated
	res.Session = sess
	return res, nil
}

func (s *AuthService) fail(res *CompleteLoginResult, err error) (*CompleteLoginResult, error) {
	res.State = domainauth.LoginFailed
	return res, err
}

// CurrentUser returns the user behind sessionID, or nil when there is none.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domainauth.User, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// EncodeState packs a random nonce and the post-login return path into an
// opaque OAuth state value: "<nonce>.<base64url(returnTo)>".
func EncodeState(nonce, returnTo string) string {
	return nonce + "." + base64.RawURLEncoding.EncodeToString([]byte(returnTo))
}

// DecodeState extracts the return path from a state produced by EncodeState.
// The result is always a safe relative path.
func DecodeState(state string) (string, error) {
	nonce, encoded, ok := strings.Cut(state, ".")
	if !ok || nonce == "" {
		return "", domainauth.ErrInvalidState
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domainauth.ErrInvalidState, err)
	}
	return SafeReturnPath(string(raw)), nil
}

// SafeReturnPath ensures the provided path is a same-origin relative path
// starting with "/" and not an absolute or protocol-relative URL.
// Returns "/" when invalid.
func SafeReturnPath(candidate string) string {
	if candidate == "" || strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}

// randomToken returns n random bytes encoded as unpadded base64url.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
