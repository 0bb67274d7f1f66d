package http

import (
	"context"
	"net/http"
	"time"

	"github.com/hail-faro/public-backend/pkg/authsdk"
	"github.com/hail-faro/public-backend/pkg/httpx"
)

// ReadinessChecker reports whether tokens can currently be verified.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// ReadyzHandler answers 503 until the user pool key set can be loaded. A nil
// checker is treated as not ready.
func ReadyzHandler(startTime time.Time, version string, ready ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{KeySet: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		switch {
		case ready == nil:
			checks.KeySet = "error: no verifier configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		default:
			if err := ready.Ready(r.Context()); err != nil {
				checks.KeySet = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
