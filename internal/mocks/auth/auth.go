package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.KeyValueStore    = (*MemoryKeyValueStore)(nil)
)

// MockIdentityProvider simulates an IdP for tests.
// Unset funcs fall back to a provider that accepts any non-empty code and
// returns DefaultUser.
type MockIdentityProvider struct {
	ExchangeFunc func(ctx context.Context, code string) (string, error)
	IdentityFunc func(ctx context.Context, accessToken string) (domainauth.User, error)

	AuthURL     string
	DefaultUser domainauth.User

	mu        sync.Mutex
	exchanges int
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.User{
			Email:   "mock.user@example.com",
			Name:    "Mock User",
			Picture: "https://mock-idp/avatar.png",
		},
	}
}

// AuthorizationURL returns AuthURL with the state appended as a query parameter.
func (m *MockIdentityProvider) AuthorizationURL(state string) string {
	base := m.AuthURL
	if base == "" {
		base = "https://mock-idp/auth"
	}
	return base + "?state=" + url.QueryEscape(state)
}

// ExchangeCode returns "token-<code>" unless ExchangeFunc is set.
func (m *MockIdentityProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	m.exchanges++
	m.mu.Unlock()

	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	if code == "" {
		return "", &domainauth.TokenExchangeError{Err: errors.New("empty code")}
	}
	return "token-" + code, nil
}

// FetchIdentity returns DefaultUser unless IdentityFunc is set.
func (m *MockIdentityProvider) FetchIdentity(ctx context.Context, accessToken string) (domainauth.User, error) {
	if m.IdentityFunc != nil {
		return m.IdentityFunc(ctx, accessToken)
	}
	return m.DefaultUser, nil
}

// Exchanges reports how many code exchanges were attempted.
func (m *MockIdentityProvider) Exchanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchanges
}

// MemoryKeyValueStore is an in-memory key-value store for unit tests.
// It records TTL hints but never expires entries on its own, which lets
// tests exercise the store's read-time expiry.
type MemoryKeyValueStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

// NewMemoryKeyValueStore creates a new in-memory key-value store.
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MemoryKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKeyValueStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.ttls[key] = ttl
	return nil
}

func (m *MemoryKeyValueStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

// Put seeds a raw value, bypassing any validation. Useful for corrupt payloads.
func (m *MemoryKeyValueStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Has reports whether key is present.
func (m *MemoryKeyValueStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// TTL returns the expiry hint recorded for key.
func (m *MemoryKeyValueStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Len returns the number of stored keys.
func (m *MemoryKeyValueStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
