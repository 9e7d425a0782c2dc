package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenugui-collection/tenugui-api/internal/adapters/allowlist"
	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/mocks"
	mockauth "github.com/tenugui-collection/tenugui-api/internal/mocks/auth"
	"go.uber.org/mock/gomock"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	createFunc func(context.Context, domainauth.User) (domainauth.Session, error)
	getFunc    func(context.Context, string) (*domainauth.User, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Create(ctx context.Context, u domainauth.User) (domainauth.Session, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return domainauth.Session{ID: "sess", User: u}, nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (*domainauth.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type authFixture struct {
	svc      *AuthService
	provider *mockauth.MockIdentityProvider
	kv       *mockauth.MemoryKeyValueStore
	sessions *SessionStore
}

func newAuthFixture(allowed string) authFixture {
	kv := mockauth.NewMemoryKeyValueStore()
	provider := mockauth.NewMockIdentityProvider()
	provider.DefaultUser = domainauth.User{Email: "a@x.com", Name: "A"}
	sessions := NewSessionStore(SessionStoreOptions{Backend: kv, Duration: time.Hour})
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Policy:   allowlist.NewStaticPolicy(allowed),
	})
	return authFixture{svc: svc, provider: provider, kv: kv, sessions: sessions}
}

func TestAuthService_BeginLogin(t *testing.T) {
	f := newAuthFixture("a@x.com")

	result, err := f.svc.BeginLogin("/items?tag=藍")
	require.NoError(t, err)
	assert.Equal(t, "/items?tag=藍", result.ReturnTo)

	u, err := url.Parse(result.AuthURL)
	require.NoError(t, err)
	assert.Equal(t, result.State, u.Query().Get("state"))

	returnTo, err := DecodeState(result.State)
	require.NoError(t, err)
	assert.Equal(t, "/items?tag=藍", returnTo)
}

func TestAuthService_BeginLogin_FreshStateEachTime(t *testing.T) {
	f := newAuthFixture("a@x.com")

	first, err := f.svc.BeginLogin("/")
	require.NoError(t, err)
	second, err := f.svc.BeginLogin("/")
	require.NoError(t, err)
	assert.NotEqual(t, first.State, second.State)
}

func TestAuthService_BeginLogin_UnsafeReturnTo(t *testing.T) {
	f := newAuthFixture("a@x.com")

	result, err := f.svc.BeginLogin("https://evil.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "/", result.ReturnTo)
}

func TestAuthService_CompleteLogin_Success(t *testing.T) {
	f := newAuthFixture("a@x.com")
	begin, err := f.svc.BeginLogin("/items/42")
	require.NoError(t, err)

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:          "good",
		State:         begin.State,
		ExpectedState: begin.State,
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.LoginAuthenticated, res.State)
	assert.Equal(t, "/items/42", res.ReturnTo)
	assert.NotEmpty(t, res.Session.ID)

	user, err := f.sessions.Get(context.Background(), res.Session.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestAuthService_CompleteLogin_Denied(t *testing.T) {
	f := newAuthFixture("b@x.com")
	begin, err := f.svc.BeginLogin("/")
	require.NoError(t, err)

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:          "good",
		State:         begin.State,
		ExpectedState: begin.State,
	})
	require.Error(t, err)

	var denied *domainauth.AccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "a@x.com", denied.Email)
	assert.Equal(t, domainauth.LoginDenied, res.State)
	assert.Equal(t, 0, f.kv.Len(), "no session may be created for a denied email")
}

func TestAuthService_CompleteLogin_EmptyAllowListDeniesEveryone(t *testing.T) {
	f := newAuthFixture("")
	begin, err := f.svc.BeginLogin("/")
	require.NoError(t, err)

	res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
		Code: "good", State: begin.State, ExpectedState: begin.State,
	})
	require.Error(t, err)
	assert.Equal(t, domainauth.LoginDenied, res.State)
}

func TestAuthService_CompleteLogin_StateMismatch(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		expected string
	}{
		{name: "missing cookie state", state: "n.Lw", expected: ""},
		{name: "missing query state", state: "", expected: "n.Lw"},
		{name: "different values", state: "n.Lw", expected: "m.Lw"},
		{name: "malformed state", state: "no-separator", expected: "no-separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture("a@x.com")

			res, err := f.svc.CompleteLogin(context.Background(), CompleteLoginInput{
				Code:          "good",
				State:         tt.state,
				ExpectedState: tt.expected,
			})
			require.ErrorIs(t, err, domainauth.ErrInvalidState)
			assert.Equal(t, domainauth.LoginFailed, res.State)
			assert.Equal(t, 0, f.provider.Exchanges(), "code must not be exchanged without a valid state")
			assert.Equal(t, 0, f.kv.Len())
		})
	}
}

func TestAuthService_CompleteLogin_ProviderFailures(t *testing.T) {
	ctx := context.Background()
	state := EncodeState("nonce", "/")

	t.Run("token exchange rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		provider := mocks.NewMockIdentityProvider(ctrl)
		provider.EXPECT().ExchangeCode(gomock.Any(), "bad").
			Return("", &domainauth.TokenExchangeError{StatusCode: 400, Err: errors.New("invalid_grant")})

		svc := NewAuthService(AuthServiceOptions{
			Provider: provider,
			Sessions: &mockSessionStore{createFunc: func(context.Context, domainauth.User) (domainauth.Session, error) {
				t.Fatal("session must not be created")
				return domainauth.Session{}, nil
			}},
			Policy: allowlist.NewStaticPolicy("a@x.com"),
		})

		res, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "bad", State: state, ExpectedState: state})
		var exchangeErr *domainauth.TokenExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		assert.Equal(t, 400, exchangeErr.StatusCode)
		assert.Equal(t, domainauth.LoginFailed, res.State)
	})

	t.Run("identity fetch fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		provider := mocks.NewMockIdentityProvider(ctrl)
		gomock.InOrder(
			provider.EXPECT().ExchangeCode(gomock.Any(), "good").Return("tok", nil),
			provider.EXPECT().FetchIdentity(gomock.Any(), "tok").
				Return(domainauth.User{}, &domainauth.IdentityFetchError{Err: errors.New("missing email")}),
		)

		svc := NewAuthService(AuthServiceOptions{
			Provider: provider,
			Sessions: &mockSessionStore{},
			Policy:   allowlist.NewStaticPolicy("a@x.com"),
		})

		res, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "good", State: state, ExpectedState: state})
		var fetchErr *domainauth.IdentityFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, domainauth.LoginFailed, res.State)
	})

	t.Run("session create fails", func(t *testing.T) {
		provider := mockauth.NewMockIdentityProvider()
		provider.DefaultUser = domainauth.User{Email: "a@x.com"}
		storeErr := errors.New("redis down")

		svc := NewAuthService(AuthServiceOptions{
			Provider: provider,
			Sessions: &mockSessionStore{createFunc: func(context.Context, domainauth.User) (domainauth.Session, error) {
				return domainauth.Session{}, storeErr
			}},
			Policy: allowlist.NewStaticPolicy("a@x.com"),
		})

		res, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "good", State: state, ExpectedState: state})
		require.ErrorIs(t, err, storeErr)
		assert.Equal(t, domainauth.LoginFailed, res.State)
	})

	t.Run("missing code", func(t *testing.T) {
		f := newAuthFixture("a@x.com")
		res, err := f.svc.CompleteLogin(ctx, CompleteLoginInput{State: state, ExpectedState: state})
		require.Error(t, err)
		assert.Equal(t, domainauth.LoginFailed, res.State)
		assert.Equal(t, 0, f.provider.Exchanges())
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture("a@x.com")
	ctx := context.Background()

	sess, err := f.sessions.Create(ctx, domainauth.User{Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, sess.ID))
	user, err := f.svc.CurrentUser(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, f.svc.Logout(ctx, ""))
}

func TestAuthService_Logout_StoreError(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{
		Sessions: &mockSessionStore{deleteFunc: func(context.Context, string) error {
			return errors.New("redis down")
		}},
	})

	err := svc.Logout(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete session")
}

func TestStateRoundTrip(t *testing.T) {
	for _, returnTo := range []string{"/", "/items/1", "/search?q=a%20b&tag=x", "/手ぬぐい"} {
		state := EncodeState("abc", returnTo)
		assert.False(t, strings.ContainsAny(state, "/+="), "state should be URL safe: %s", state)

		got, err := DecodeState(state)
		require.NoError(t, err)
		assert.Equal(t, returnTo, got)
	}
}

func TestDecodeState_Invalid(t *testing.T) {
	for _, state := range []string{"", "abc", ".Lw", "abc.***"} {
		_, err := DecodeState(state)
		assert.ErrorIs(t, err, domainauth.ErrInvalidState, "state %q", state)
	}
}

func TestDecodeState_UnsafeReturnTo(t *testing.T) {
	got, err := DecodeState(EncodeState("abc", "//evil.example.com"))
	require.NoError(t, err)
	assert.Equal(t, "/", got)
}

func TestSafeReturnPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "/"},
		{in: "/", want: "/"},
		{in: "/items?page=2", want: "/items?page=2"},
		{in: "items", want: "/"},
		{in: "https://evil.example.com", want: "/"},
		{in: "//evil.example.com/path", want: "/"},
		{in: `/\evil.example.com`, want: "/"},
		{in: "javascript:alert(1)", want: "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeReturnPath(tt.in), "input %q", tt.in)
	}
}
