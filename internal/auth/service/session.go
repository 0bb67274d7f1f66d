package service

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/hail-faro/public-backend/internal/auth/domain"
	"github.com/hail-faro/public-backend/internal/auth/idp"
)

var (
	// ErrMissingSecretHash means the session reached the provider call without
	// a secret hash. No request is sent.
	ErrMissingSecretHash = errors.New("service: secret hash not computed")

	// ErrNoAuthResult means the provider accepted the call but returned no
	// tokens, typically because it wants a challenge answered.
	ErrNoAuthResult = errors.New("service: no authentication result")

	// ErrSessionState is returned when a session step is called out of order.
	ErrSessionState = errors.New("service: auth session used out of order")
)

// ChallengeError is an ErrNoAuthResult naming the challenge the provider
// asked for, if any.
type ChallengeError struct {
	Challenge string
}

func (e *ChallengeError) Error() string {
	if e.Challenge == "" {
		return ErrNoAuthResult.Error()
	}
	return fmt.Sprintf("%s: challenge %s", ErrNoAuthResult, e.Challenge)
}

func (e *ChallengeError) Unwrap() error { return ErrNoAuthResult }

// SessionState is a step of an AuthSession.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StatePrepared
	StateRequested
	StateSucceeded
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePrepared:
		return "prepared"
	case StateRequested:
		return "requested"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// AuthSession drives one login attempt against the provider. It is single
// use and not safe for concurrent use; create one per request.
type AuthSession struct {
	provider idp.Provider
	creds    domain.Credentials

	state SessionState
	req   domain.FlowRequest
	err   error
}

// NewAuthSession returns an uninitialized session. creds should already carry
// the encoded secret hash.
func NewAuthSession(p idp.Provider, creds domain.Credentials) *AuthSession {
	return &AuthSession{provider: p, creds: creds}
}

// State returns the current step.
func (s *AuthSession) State() SessionState { return s.state }

// Err returns the failure once the session is in StateFailed.
func (s *AuthSession) Err() error { return s.err }

// Prepare selects the call shape for the configured flow.
func (s *AuthSession) Prepare() error {
	if s.state != StateUninitialized {
		return fmt.Errorf("%w: prepare in state %s", ErrSessionState, s.state)
	}
	s.req = domain.SelectFlow(s.creds)
	s.state = StatePrepared
	return nil
}

// Authenticate sends params plus the secret hash to the provider and returns
// the token bundle. Without a secret hash the session fails before any call.
func (s *AuthSession) Authenticate(ctx context.Context, params map[string]string) (domain.TokenBundle, error) {
	if s.state != StatePrepared {
		return domain.TokenBundle{}, fmt.Errorf("%w: authenticate in state %s", ErrSessionState, s.state)
	}
	if s.creds.EncodedHash == "" {
		return s.fail(ErrMissingSecretHash)
	}

	p := maps.Clone(params)
	if p == nil {
		p = make(map[string]string, 1)
	}
	p[domain.ParamSecretHash] = s.creds.EncodedHash

	s.state = StateRequested
	out, err := idp.Dispatch(ctx, s.provider, s.req.WithParameters(p))
	if err != nil {
		return s.fail(err)
	}
	if out == nil || out.Result == nil {
		var challenge string
		if out != nil {
			challenge = out.ChallengeName
		}
		return s.fail(&ChallengeError{Challenge: challenge})
	}

	s.state = StateSucceeded
	return *out.Result, nil
}

func (s *AuthSession) fail(err error) (domain.TokenBundle, error) {
	s.state = StateFailed
	s.err = err
	return domain.TokenBundle{}, err
}
