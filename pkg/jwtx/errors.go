package jwtx

import (
	"errors"
	"fmt"
)

// Verification failure kinds. Every error returned by Verifier.Verify and
// RemoteKeySets matches exactly one of the first six with errors.Is.
var (
	ErrNoKeyID          = errors.New("jwtx: token header has no kid")
	ErrInvalidSignature = errors.New("jwtx: invalid token signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrNetwork          = errors.New("jwtx: failed to fetch remote key set")
	ErrCacheMiss        = errors.New("jwtx: key not in key set")

	// Claim mismatches are malformed tokens.
	ErrAudience = fmt.Errorf("%w: audience mismatch", ErrMalformed)
	ErrIssuer   = fmt.Errorf("%w: issuer mismatch", ErrMalformed)
	ErrTokenUse = fmt.Errorf("%w: not an access token", ErrMalformed)

	// Signing-library level failures, reported as operational errors.
	ErrAlgMismatch = errors.New("jwtx: token alg does not match key")
	ErrInvalidKey  = errors.New("jwtx: invalid key material")
)
