package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/hail-faro/public-backend/pkg/jwtx"
)

const (
	testRegion   = "us-east-1"
	testPool     = "us-east-1_TESTPOOL"
	testClientID = "client-1"
)

var (
	keyOnce sync.Once
	keyA    *rsa.PrivateKey
	keyB    *rsa.PrivateKey
)

// testKeys generates two RSA keys once per test binary.
func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		keyA, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		keyB, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return keyA, keyB
}

// jwksServer publishes a swappable key set at /{pool}/.well-known/jwks.json.
type jwksServer struct {
	*httptest.Server
	hits atomic.Int32

	mu     sync.Mutex
	jwks   jwtx.JWKS
	status int
}

func newJWKSServer(t *testing.T, keys ...jwtx.JWK) *jwksServer {
	t.Helper()
	s := &jwksServer{jwks: jwtx.JWKS{Keys: keys}, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if r.URL.Path != "/"+testPool+"/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status != http.StatusOK {
			w.WriteHeader(s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.jwks)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) setKeys(keys ...jwtx.JWK) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jwks = jwtx.JWKS{Keys: keys}
}

func (s *jwksServer) setStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *jwksServer) issuer() string { return s.URL + "/" + testPool }

// accessClaims returns valid access token claims for the server's pool.
func (s *jwksServer) accessClaims(now time.Time) jwtx.AccessClaims {
	return jwtx.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    s.issuer(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		TokenUse: jwtx.TokenUseAccess,
		ClientID: testClientID,
		Username: "a@x.com",
		Scope:    "aws.cognito.signin.user.admin",
	}
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}
