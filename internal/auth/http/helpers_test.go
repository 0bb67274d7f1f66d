package http

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/domain"
	"github.com/hail-faro/public-backend/internal/auth/idp"
	"github.com/hail-faro/public-backend/internal/auth/service"
	"github.com/hail-faro/public-backend/internal/metrics"
	"github.com/hail-faro/public-backend/pkg/jwtx"
)

const (
	testPool     = "us-east-1_HTTPTEST"
	testRegion   = "us-east-1"
	testClientID = "client-1"
	testSecret   = "s3cret"
)

var (
	signingKeyOnce sync.Once
	signingKey     *rsa.PrivateKey
)

func testSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	signingKeyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		signingKey = k
	})
	return signingKey
}

// stubProvider answers every call with out or err and counts the calls.
type stubProvider struct {
	mu    sync.Mutex
	n     int
	input map[string]string

	out *idp.AuthOutput
	err error
}

func (p *stubProvider) AdminInitiateAuth(_ context.Context, req domain.AdminInitiate) (*idp.AuthOutput, error) {
	return p.answer(req.Parameters())
}

func (p *stubProvider) InitiateAuth(_ context.Context, req domain.UserInitiate) (*idp.AuthOutput, error) {
	return p.answer(req.Parameters())
}

func (p *stubProvider) answer(params map[string]string) (*idp.AuthOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	p.input = params
	return p.out, p.err
}

func (p *stubProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

type gateway struct {
	router   *Router
	provider *stubProvider
	jwks     *httptest.Server
	metrics  *metrics.Metrics
}

type gatewayOption func(*service.LoginService)

func withSecret(secret string) gatewayOption {
	return func(s *service.LoginService) { s.Credentials.Secret = secret }
}

// newGateway wires a Router against a stub provider and a local JWKS server.
func newGateway(t *testing.T, provider *stubProvider, opts ...gatewayOption) *gateway {
	t.Helper()

	key := testSigningKey(t)
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+testPool+"/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewRSAJWK("kid-1", &key.PublicKey)}})
	}))
	t.Cleanup(jwks.Close)

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	keys := jwtx.NewRemoteKeySets(jwtx.WithIssuerBase(jwks.URL))
	login := &service.LoginService{
		Provider: provider,
		Credentials: domain.Credentials{
			Secret:     testSecret,
			ClientID:   testClientID,
			UserPoolID: testPool,
			Flow:       domain.FlowAdminUserPassword,
		},
		Metrics: m,
	}
	for _, opt := range opts {
		opt(login)
	}

	r := NewRouter("test", m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Cookies = cookie.Factory{}
	r.LoginService = login
	r.AuthorizeService = &service.AuthorizeService{
		Keys:       keys,
		Verifier:   jwtx.NewVerifier(keys),
		ClientID:   testClientID,
		Region:     testRegion,
		UserPoolID: testPool,
		Metrics:    m,
	}
	r.ApplyRoutes()

	return &gateway{router: r, provider: provider, jwks: jwks, metrics: m}
}

// accessToken signs an access token the gateway accepts, adjusted by mutate.
func (g *gateway) accessToken(t *testing.T, mutate func(*jwtx.AccessClaims)) string {
	t.Helper()
	claims := jwtx.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    g.jwks.URL + "/" + testPool,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenUse: jwtx.TokenUseAccess,
		ClientID: testClientID,
		Username: "a@x.com",
		Scope:    "openid email",
	}
	if mutate != nil {
		mutate(&claims)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "kid-1"
	s, err := tok.SignedString(testSigningKey(t))
	require.NoError(t, err)
	return s
}

func sessionCookies(access string) []*http.Cookie {
	return []*http.Cookie{
		{Name: domain.CookieAccessToken, Value: access},
		{Name: domain.CookieIDToken, Value: "IT"},
		{Name: domain.CookieRefreshToken, Value: "RT"},
	}
}
