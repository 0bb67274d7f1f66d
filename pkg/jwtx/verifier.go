package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks user pool access tokens against the pool's published keys.
type Verifier struct {
	keys   *RemoteKeySets
	now    func() time.Time
	leeway time.Duration
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock replaces time.Now for expiry checks.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// WithLeeway allows exp to be this far in the past.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.leeway = d }
}

// NewVerifier returns a Verifier reading keys from keys.
func NewVerifier(keys *RemoteKeySets, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks tokenStr was issued by the pool (region, poolID) for
// audience, is an access token and has not expired.
//
// Order: key set, alg, kid, key lookup, signature, claims (audience, token use,
// issuer), expiry. The first failure is returned.
func (v *Verifier) Verify(ctx context.Context, tokenStr, audience, region, poolID string) (*AccessClaims, error) {
	set, err := v.keys.Get(ctx, region, poolID)
	if err != nil {
		return nil, err
	}

	claims := &AccessClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	_, err = parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("%w: %s", ErrAlgMismatch, t.Method.Alg())
		}

		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrNoKeyID
		}

		pub, alg, err := set.Key(kid)
		if errors.Is(err, ErrCacheMiss) && v.keys.Stale(set) {
			// Keys may have rotated since the set was cached.
			fresh, ferr := v.keys.Refresh(ctx, region, poolID)
			if ferr != nil {
				return nil, ferr
			}
			pub, alg, err = fresh.Key(kid)
		}
		if err != nil {
			return nil, err
		}

		if alg != "" && alg != t.Method.Alg() {
			return nil, fmt.Errorf("%w: token %s, key %s", ErrAlgMismatch, t.Method.Alg(), alg)
		}
		return pub, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	if err := claims.ValidateAudience(audience); err != nil {
		return nil, err
	}
	if err := claims.ValidateTokenUse(); err != nil {
		return nil, err
	}
	if err := claims.ValidateIssuer(v.keys.Issuer(region, poolID)); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(v.now(), v.leeway); err != nil {
		return nil, err
	}
	return claims, nil
}

// classifyParseError maps golang-jwt failures onto this package's kinds.
// Errors produced by the key lookup pass through unchanged.
func classifyParseError(err error) error {
	for _, own := range []error{
		ErrNoKeyID, ErrCacheMiss, ErrNetwork, ErrInvalidKey, ErrAlgMismatch,
	} {
		if errors.Is(err, own) {
			return err
		}
	}

	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// Header alg the library does not know.
		return fmt.Errorf("%w: %w", ErrAlgMismatch, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
