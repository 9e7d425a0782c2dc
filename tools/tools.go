//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are run through `go run` or installed globally and are not tracked
// in go.mod since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// mockgen - gomock code generation for internal/mocks
//   Run: go generate ./internal/mocks
//   Version: v0.6.0 (matches go.uber.org/mock in go.mod)
//   Docs: https://github.com/uber-go/mock
