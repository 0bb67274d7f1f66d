package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hail-faro/public-backend/pkg/authsdk"
)

type readiness func(context.Context) error

func (f readiness) Ready(ctx context.Context) error { return f(ctx) }

func TestLivez(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	LivezHandler(time.Now().Add(-time.Minute), "v1.2.3").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body authsdk.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "v1.2.3", body.Version)
	require.NotEmpty(t, body.Uptime)
	require.Nil(t, body.Checks)
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ready  ReadinessChecker
		status int
		state  string
		keySet string
	}{
		{"ready", readiness(func(context.Context) error { return nil }), http.StatusOK, "ok", "ok"},
		{"key set unreachable", readiness(func(context.Context) error { return errors.New("jwks down") }), http.StatusServiceUnavailable, "degraded", "error: jwks down"},
		{"no checker", nil, http.StatusServiceUnavailable, "degraded", "error: no verifier configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			ReadyzHandler(time.Now(), "test", tt.ready).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, tt.status, rec.Code)
			var body authsdk.HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, tt.state, body.Status)
			require.NotNil(t, body.Checks)
			require.Equal(t, tt.keySet, body.Checks.KeySet)
		})
	}
}

func TestRouter_Readyz(t *testing.T) {
	t.Parallel()

	g := newGateway(t, okProvider())

	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	g := newGateway(t, okProvider())

	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, loginRequest("a@x.com", "p"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	g.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `auth_logins_total{flow="ADMIN_USER_PASSWORD_AUTH",outcome="ok"} 1`)
	require.Contains(t, string(body), `auth_http_requests_total{method="POST",route="POST /login",status="200"} 1`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	g := newGateway(t, okProvider())

	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
