package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hail-faro/public-backend/internal/auth/domain"
	"github.com/hail-faro/public-backend/internal/auth/idp"
	"github.com/hail-faro/public-backend/pkg/authsdk"
)

// serve starts g behind a real listener and returns an SDK client for it.
func serve(t *testing.T, g *gateway) *authsdk.SDKClient {
	t.Helper()
	srv := httptest.NewServer(g.router)
	t.Cleanup(srv.Close)
	return authsdk.NewSDKClient(srv.URL)
}

func TestEndToEnd_LoginThenAuthorize(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	g := newGateway(t, provider)
	access := g.accessToken(t, nil)
	provider.out = &idp.AuthOutput{Result: &domain.TokenBundle{
		AccessToken:  access,
		IDToken:      "IT",
		RefreshToken: "RT",
		ExpiresIn:    3600,
	}}
	client := serve(t, g)
	ctx := context.Background()

	cookies, err := client.Login(ctx, "a@x.com", "p")
	require.NoError(t, err)
	require.Len(t, cookies, 3)

	values := map[string]string{}
	for _, c := range cookies {
		values[c.Name] = c.Value
	}
	require.Equal(t, access, values["access_token"])
	require.Equal(t, "IT", values["id_token"])
	require.Equal(t, "RT", values["refresh_token"])

	info, err := client.Authorize(ctx, cookies)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, "user-123", info.Sub)
	require.Equal(t, testClientID, info.ClientID)
}

func TestEndToEnd_MissingSecret(t *testing.T) {
	t.Parallel()

	provider := okProvider()
	client := serve(t, newGateway(t, provider, withSecret("")))

	_, err := client.Login(context.Background(), "a@x.com", "p")

	var e *authsdk.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Equal(t, "Missing server side SECRET_HASH", e.Message)
	require.Equal(t, "Basic", e.Challenge)
	require.Zero(t, provider.calls())
}

func TestEndToEnd_AuthorizeWithoutAccessCookie(t *testing.T) {
	t.Parallel()

	client := serve(t, newGateway(t, okProvider()))

	_, err := client.Authorize(context.Background(), []*http.Cookie{
		{Name: "id_token", Value: "IT"},
		{Name: "refresh_token", Value: "RT"},
	})

	var e *authsdk.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Empty(t, e.Message)
}
