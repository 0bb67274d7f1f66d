package domain

import "github.com/hail-faro/public-backend/pkg/cryptox"

// Credentials is the client configuration for one login attempt. EncodedHash
// is empty until WithSecretHash succeeds.
type Credentials struct {
	Secret      string
	ClientID    string
	UserPoolID  string
	Flow        FlowType
	EncodedHash string
}

// WithSecretHash returns a copy of c carrying the secret hash for username.
// Without a secret it returns c unchanged and cryptox.ErrMissingSecret.
func (c Credentials) WithSecretHash(username string) (Credentials, error) {
	h, err := cryptox.ComputeSecretHash(c.Secret, username, c.ClientID)
	if err != nil {
		return c, err
	}
	c.EncodedHash = h
	return c, nil
}
