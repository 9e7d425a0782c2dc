package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
)

// Classify returns a normalized error type name suitable for tagging metrics/logs.
// Login-flow errors map to stable names; anything else is unwrapped to the
// innermost concrete type and converted to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if class := classifyAuth(err); class != "" {
		return class
	}
	return classifyType(err)
}

func classifyAuth(err error) string {
	var (
		exchangeErr *domainauth.TokenExchangeError
		identityErr *domainauth.IdentityFetchError
		deniedErr   *domainauth.AccessDeniedError
	)
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, domainauth.ErrInvalidState):
		return "invalid_state"
	case goerrors.As(err, &deniedErr):
		return "access_denied"
	case goerrors.As(err, &exchangeErr):
		return "token_exchange"
	case goerrors.As(err, &identityErr):
		return "identity_fetch"
	default:
		return ""
	}
}

func classifyType(err error) string {
	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
