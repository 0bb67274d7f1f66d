package jwtx

import (
	"crypto/rsa"
	"fmt"
	"maps"
	"slices"
	"time"
)

type keyEntry struct {
	alg string
	pub *rsa.PublicKey
	err error // set when the published key could not be decoded
}

// KeySet is one fetched snapshot of a provider's signing keys. It is never
// mutated after NewKeySet returns; a refresh builds a new KeySet, so readers
// always see a complete set.
type KeySet struct {
	keys      map[string]keyEntry
	fetchedAt time.Time
}

// NewKeySet indexes jwks by kid. Keys without a kid or not meant for
// signatures are ignored. A key that fails to decode is remembered so that
// tokens naming it report ErrInvalidKey instead of a cache miss.
func NewKeySet(jwks JWKS, fetchedAt time.Time) *KeySet {
	keys := make(map[string]keyEntry, len(jwks.Keys))
	for _, j := range jwks.Keys {
		if j.Kid == "" || (j.Use != "" && j.Use != "sig") {
			continue
		}
		pub, err := j.RSAPublicKey()
		keys[j.Kid] = keyEntry{alg: j.Alg, pub: pub, err: err}
	}
	return &KeySet{keys: keys, fetchedAt: fetchedAt}
}

// Key returns the public key for kid and the algorithm it was published for.
func (k *KeySet) Key(kid string) (*rsa.PublicKey, string, error) {
	e, ok := k.keys[kid]
	switch {
	case !ok:
		return nil, "", fmt.Errorf("%w: kid %q", ErrCacheMiss, kid)
	case e.err != nil:
		return nil, "", fmt.Errorf("kid %q: %w", kid, e.err)
	}
	return e.pub, e.alg, nil
}

// KIDs lists the key ids in the set, sorted.
func (k *KeySet) KIDs() []string {
	return slices.Sorted(maps.Keys(k.keys))
}

// Len is the number of keys in the set.
func (k *KeySet) Len() int { return len(k.keys) }

// FetchedAt is when the set was retrieved.
func (k *KeySet) FetchedAt() time.Time { return k.fetchedAt }
