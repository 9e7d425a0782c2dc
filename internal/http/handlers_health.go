package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	healthResponse   = `{"status":"ok"}`
	readinessTimeout = 2 * time.Second
)

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// readyHandler reports 503 while the session backend is unreachable.
func readyHandler(ping func(context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.WarnContext(r.Context(), "readiness check failed", "error", err)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		healthHandler(w, r)
	}
}
