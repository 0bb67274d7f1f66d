package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/domain"
)

var (
	fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	bundle   = domain.TokenBundle{AccessToken: "AT", IDToken: "IT", RefreshToken: "RT", ExpiresIn: 3600}
)

func factory() cookie.Factory {
	return cookie.Factory{Secure: true, Now: func() time.Time { return fixedNow }}
}

func TestPackage(t *testing.T) {
	t.Parallel()

	tokens, err := factory().Package(bundle, "auth.example.com:8443")
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	want := map[string]string{"access_token": "AT", "id_token": "IT", "refresh_token": "RT"}
	for name, value := range want {
		c, err := tokens[name].Cookie()
		require.NoError(t, err, name)
		require.Equal(t, value, c.Value)
		require.Equal(t, 3600, c.MaxAge, "max-age is expires_in seconds")
		require.True(t, fixedNow.Add(time.Hour).Equal(c.Expires))
		require.Equal(t, "/", c.Path)
		require.Equal(t, "auth.example.com", c.Domain)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.True(t, c.HttpOnly)
		require.True(t, c.Secure)
	}
}

func TestPackage_Domain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		override string
		host     string
		want     string
	}{
		{"override wins", "example.com", "auth.example.com", "example.com"},
		{"host without port", "", "auth.example.com", "auth.example.com"},
		{"ipv4 with port", "", "127.0.0.1:8000", "127.0.0.1"},
		{"empty host", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := factory()
			f.Domain = tt.override
			tokens, err := f.Package(bundle, tt.host)
			require.NoError(t, err)
			c, err := tokens[domain.CookieAccessToken].Cookie()
			require.NoError(t, err)
			require.Equal(t, tt.want, c.Domain)
		})
	}
}

func TestPackage_Invalid(t *testing.T) {
	t.Parallel()

	bad := bundle
	bad.IDToken = `has"quote;`
	_, err := factory().Package(bad, "example.com")
	require.ErrorIs(t, err, cookie.ErrCookie)

	neg := bundle
	neg.ExpiresIn = -1
	_, err = factory().Package(neg, "example.com")
	require.ErrorIs(t, err, cookie.ErrCookie)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("refuses raw tokens", func(t *testing.T) {
		raw := cookie.Tokens{
			domain.CookieAccessToken:  domain.RawToken("AT"),
			domain.CookieIDToken:      domain.RawToken("IT"),
			domain.CookieRefreshToken: domain.RawToken("RT"),
		}
		rec := httptest.NewRecorder()
		err := factory().Write(rec, raw)
		require.ErrorIs(t, err, cookie.ErrCookie)
		require.ErrorIs(t, err, domain.ErrNotCookie)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("refuses partial set", func(t *testing.T) {
		tokens, err := factory().Package(bundle, "example.com")
		require.NoError(t, err)
		delete(tokens, domain.CookieRefreshToken)

		rec := httptest.NewRecorder()
		require.ErrorIs(t, factory().Write(rec, tokens), cookie.ErrCookie)
		require.Empty(t, rec.Result().Cookies())
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	f := factory()
	tokens, err := f.Package(bundle, "example.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, f.Write(rec, tokens))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	got, err := f.Extract(req)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for name, want := range bundle.Tokens() {
		v, err := got[name].Raw()
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}

func TestExtract_FailFast(t *testing.T) {
	t.Parallel()

	for _, missing := range cookie.Names {
		t.Run("without "+missing, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth", nil)
			for name, v := range bundle.Tokens() {
				if name != missing {
					req.AddCookie(&http.Cookie{Name: name, Value: v})
				}
			}
			got, err := factory().Extract(req)
			require.ErrorIs(t, err, cookie.ErrMissingCookie)
			require.ErrorContains(t, err, missing)
			require.Nil(t, got)
		})
	}

	t.Run("empty value counts as missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth", nil)
		req.AddCookie(&http.Cookie{Name: domain.CookieAccessToken, Value: ""})
		_, err := factory().Extract(req)
		require.ErrorIs(t, err, cookie.ErrMissingCookie)
	})
}
