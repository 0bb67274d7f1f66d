package service

import (
	"context"
	"errors"

	"github.com/hail-faro/public-backend/internal/auth/domain"
	"github.com/hail-faro/public-backend/internal/auth/idp"
	"github.com/hail-faro/public-backend/internal/metrics"
	"github.com/hail-faro/public-backend/pkg/slogx"
)

// LoginService authenticates a user against the provider.
type LoginService struct {
	Provider    idp.Provider
	Credentials domain.Credentials
	Metrics     *metrics.Metrics
}

// Login runs one AuthSession for email and password.
func (s *LoginService) Login(ctx context.Context, email, password string) (domain.TokenBundle, error) {
	log := slogx.FromContext(ctx)

	creds, err := s.Credentials.WithSecretHash(email)
	if err != nil {
		// The session refuses to call the provider without a hash.
		log.Warn("secret hash not computed", "error", err)
	}

	sess := NewAuthSession(s.Provider, creds)
	if err := sess.Prepare(); err != nil {
		return domain.TokenBundle{}, err
	}

	bundle, err := sess.Authenticate(ctx, map[string]string{
		domain.ParamUsername: email,
		domain.ParamPassword: password,
	})
	outcome := loginOutcome(err)
	s.Metrics.Login(string(creds.Flow), outcome)
	if err != nil {
		log.Info("login failed", "flow", creds.Flow, "outcome", outcome, "state", sess.State())
		return domain.TokenBundle{}, err
	}

	log.Info("login succeeded", "flow", creds.Flow, "expires_in", bundle.ExpiresIn)
	return bundle, nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingSecretHash):
		return "missing_secret_hash"
	case errors.Is(err, ErrNoAuthResult):
		return "challenge"
	case errors.Is(err, idp.ErrService):
		return "rejected"
	case errors.Is(err, idp.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
