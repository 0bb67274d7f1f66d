package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/domain"
	"github.com/hail-faro/public-backend/internal/metrics"
	"github.com/hail-faro/public-backend/pkg/cryptox"
	"github.com/hail-faro/public-backend/pkg/jwtx"
	"github.com/hail-faro/public-backend/pkg/slogx"
)

// AuthorizeService checks a session's access token against the pool keys.
type AuthorizeService struct {
	Keys       *jwtx.RemoteKeySets
	Verifier   *jwtx.Verifier
	ClientID   string
	Region     string
	UserPoolID string
	Metrics    *metrics.Metrics
}

// Authorization describes a verified access token.
type Authorization struct {
	Subject   string
	Username  string
	ClientID  string
	Scope     string
	ExpiresAt time.Time
}

// Authorize verifies the access token in tokens. The token must be the
// app client's, an access token, and unexpired.
func (s *AuthorizeService) Authorize(ctx context.Context, tokens cookie.Tokens) (*Authorization, error) {
	tok, ok := tokens[domain.CookieAccessToken]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cookie.ErrMissingCookie, domain.CookieAccessToken)
	}
	raw, err := tok.Raw()
	if err != nil {
		return nil, err
	}

	log := slogx.FromContext(ctx).With("token_fp", cryptox.FingerprintToken(raw))

	claims, err := s.Verifier.Verify(ctx, raw, s.ClientID, s.Region, s.UserPoolID)
	outcome := verifyOutcome(err)
	s.Metrics.Verification(outcome)
	if err != nil {
		log.Info("access token rejected", "outcome", outcome, "error", err)
		return nil, err
	}

	a := &Authorization{
		Subject:  claims.Subject,
		Username: claims.Username,
		ClientID: claims.ClientID,
		Scope:    claims.Scope,
	}
	if claims.ExpiresAt != nil {
		a.ExpiresAt = claims.ExpiresAt.Time
	}
	log.Debug("access token verified", "sub", a.Subject)
	return a, nil
}

// Ready reports whether the configured pool's key set can be loaded.
func (s *AuthorizeService) Ready(ctx context.Context) error {
	_, err := s.Keys.Get(ctx, s.Region, s.UserPoolID)
	return err
}

func verifyOutcome(err error) string {
	for _, o := range []struct {
		kind error
		name string
	}{
		{jwtx.ErrNoKeyID, "no_kid"},
		{jwtx.ErrInvalidSignature, "invalid_signature"},
		{jwtx.ErrExpired, "expired"},
		{jwtx.ErrMalformed, "malformed"},
		{jwtx.ErrNetwork, "network"},
		{jwtx.ErrCacheMiss, "cache_miss"},
	} {
		if errors.Is(err, o.kind) {
			return o.name
		}
	}
	if err == nil {
		return "ok"
	}
	return "error"
}
