package metrics

import (
	"time"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
	obserrors "github.com/tenugui-collection/tenugui-api/internal/observability/errors"
	"github.com/tenugui-collection/tenugui-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultDenied  = "denied"
	ResultError   = "error"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// LoginMetric captures the outcome of one OAuth callback.
type LoginMetric struct {
	Provider string
	State    domainauth.LoginState
	Duration time.Duration
	Err      error
}

// EmitLoginOutcome emits standardised login outcome metrics.
func EmitLoginOutcome(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"provider": in.Provider,
		"state":    string(in.State),
		"result":   loginResult(in.State),
	}

	if in.Err != nil && in.State == domainauth.LoginFailed {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.login", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.login_duration", in.Duration, CloneTags(tags))
	}
}

func loginResult(state domainauth.LoginState) string {
	switch state {
	case domainauth.LoginAuthenticated:
		return ResultSuccess
	case domainauth.LoginDenied:
		return ResultDenied
	default:
		return ResultError
	}
}

// EmitSessionLookup counts session resolutions by result (hit, miss or error).
func EmitSessionLookup(sink statsd.Sink, result string) {
	if sink == nil {
		return
	}
	sink.Count("auth.session_lookup", 1, map[string]string{"result": result})
}

// EmitLogout counts explicit logouts.
func EmitLogout(sink statsd.Sink, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("auth.logout", 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
