package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"slices"
)

var (
	// ErrMissingSecret is returned when a secret hash is requested without a
	// shared secret configured.
	ErrMissingSecret = errors.New("cryptox: missing shared secret")

	// ErrHashNotUpdated is returned by Sum when no input was consumed.
	ErrHashNotUpdated = errors.New("cryptox: secret hash finalized before any update")
)

// SecretHash is the keyed request signature a user pool expects alongside a
// login: HMAC-SHA256(secret, username || clientID), base64 (standard) encoded.
//
// Values are immutable. Update returns a new SecretHash and never touches the
// receiver, so a partially fed hash can be shared or reused safely.
type SecretHash struct {
	key []byte
	msg []byte
	fed bool
}

// NewSecretHash starts a hash keyed by secret. An empty secret is treated as
// absent.
func NewSecretHash(secret string) (SecretHash, error) {
	if secret == "" {
		return SecretHash{}, ErrMissingSecret
	}
	return SecretHash{key: []byte(secret)}, nil
}

// Update returns a copy of h that has also consumed p.
func (h SecretHash) Update(p []byte) SecretHash {
	msg := make([]byte, 0, len(h.msg)+len(p))
	msg = append(msg, h.msg...)
	msg = append(msg, p...)
	return SecretHash{key: slices.Clone(h.key), msg: msg, fed: true}
}

// Sum finalizes the hash and returns it base64 encoded.
func (h SecretHash) Sum() (string, error) {
	if len(h.key) == 0 {
		return "", ErrMissingSecret
	}
	if !h.fed {
		return "", ErrHashNotUpdated
	}
	mac := hmac.New(sha256.New, h.key)
	mac.Write(h.msg)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// ComputeSecretHash runs the full pipeline for a login attempt.
func ComputeSecretHash(secret, username, clientID string) (string, error) {
	h, err := NewSecretHash(secret)
	if err != nil {
		return "", err
	}
	return h.Update([]byte(username)).Update([]byte(clientID)).Sum()
}
