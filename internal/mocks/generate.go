// Package mocks provides generated mock implementations of the auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	kv := mocks.NewMockKeyValueStore(ctrl)
//	kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
package mocks

// Generate mock for KeyValueStore interface from internal/ports package.
// This creates MockKeyValueStore with methods for all KeyValueStore interface methods:
// Get, Set, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=key_value_store_mock.go github.com/tenugui-collection/tenugui-api/internal/ports KeyValueStore

// Generate mock for IdentityProvider interface from internal/ports package.
// This creates MockIdentityProvider with methods for all IdentityProvider interface methods:
// AuthorizationURL, ExchangeCode, FetchIdentity
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_provider_mock.go github.com/tenugui-collection/tenugui-api/internal/ports IdentityProvider
