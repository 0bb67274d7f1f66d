package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUseAccess is the token_use value of a user pool access token.
const TokenUseAccess = "access"

// AccessClaims are the claims of a user pool access token. Access tokens
// carry the app client in client_id rather than aud.
type AccessClaims struct {
	jwt.RegisteredClaims

	TokenUse string `json:"token_use"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Scope    string `json:"scope,omitempty"` // space-delimited
}

// ValidateIssuer checks the issuer matches expected.
func (c *AccessClaims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks expected against aud, or against client_id when the
// token has no aud.
func (c *AccessClaims) ValidateAudience(expected string) error {
	if len(c.Audience) > 0 {
		if slices.Contains(c.Audience, expected) {
			return nil
		}
		return ErrAudience
	}
	if c.ClientID == "" || c.ClientID != expected {
		return ErrAudience
	}
	return nil
}

// ValidateTokenUse rejects id and refresh tokens.
func (c *AccessClaims) ValidateTokenUse() error {
	if c.TokenUse != TokenUseAccess {
		return ErrTokenUse
	}
	return nil
}

// ValidateExpiry checks exp against now with a grace period for clock skew.
// A token without exp is malformed.
func (c *AccessClaims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrMalformed
	}
	if now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	return nil
}
