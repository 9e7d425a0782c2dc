package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tenugui-collection/tenugui-api/internal/adapters/allowlist"
	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/http/sessioncookie"
	mockauth "github.com/tenugui-collection/tenugui-api/internal/mocks/auth"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
	"github.com/tenugui-collection/tenugui-api/internal/service"
)

// testApp wires the real auth stack over in-memory doubles.
type testApp struct {
	handler  http.Handler
	kv       *mockauth.MemoryKeyValueStore
	provider *mockauth.MockIdentityProvider
	sessions *service.SessionStore
	cookies  *sessioncookie.Codec
	clock    *service.FixedTimeProvider
	metrics  *statsd.Recorder
}

func newTestApp(t *testing.T, allowed string) *testApp {
	t.Helper()

	kv := mockauth.NewMemoryKeyValueStore()
	clock := service.NewFixedTimeProvider(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	sessions := service.NewSessionStore(service.SessionStoreOptions{
		Backend:  kv,
		Duration: time.Hour,
		Clock:    clock,
	})
	provider := mockauth.NewMockIdentityProvider()
	provider.DefaultUser = domainauth.User{Email: "a@x.com", Name: "A <script>"}
	cookies := sessioncookie.New(sessioncookie.Options{MaxAge: time.Hour})
	rec := &statsd.Recorder{}

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Policy:   allowlist.NewStaticPolicy(allowed),
	})
	guards := NewGuards(GuardsOptions{Sessions: sessions, Cookies: cookies, Metrics: rec})

	handler := NewRouter(RouterServices{
		Auth:     svc,
		Guards:   guards,
		Cookies:  cookies,
		Metrics:  rec,
		Provider: "mock",
	})

	return &testApp{
		handler:  handler,
		kv:       kv,
		provider: provider,
		sessions: sessions,
		cookies:  cookies,
		clock:    clock,
		metrics:  rec,
	}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
