package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultKeySetTTL is how long a fetched key set is served before it is
	// fetched again.
	DefaultKeySetTTL = time.Hour

	// DefaultRefetchAfter is the minimum age of a cached set before an
	// unknown kid is allowed to force a refetch.
	DefaultRefetchAfter = time.Minute

	defaultFetchTimeout = 10 * time.Second
	maxJWKSBytes        = 1 << 20
)

// FetchObserver is told about every remote fetch, with "ok" or "error".
type FetchObserver func(result string, took time.Duration)

// RemoteKeySets fetches and caches user pool key sets keyed by
// (region, pool). Concurrent cold fetches of the same set share one request.
type RemoteKeySets struct {
	client       *http.Client
	issuerBase   string
	ttl          time.Duration
	refetchAfter time.Duration
	now          func() time.Time
	observe      FetchObserver

	cache *gocache.Cache
	group singleflight.Group
}

// RemoteOption configures RemoteKeySets.
type RemoteOption func(*RemoteKeySets)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteKeySets) { r.client = c }
}

// WithIssuerBase replaces the provider issuer base. The issuer for a pool
// becomes base + "/" + pool. Used for local stacks and tests.
func WithIssuerBase(base string) RemoteOption {
	return func(r *RemoteKeySets) { r.issuerBase = strings.TrimRight(base, "/") }
}

// WithTTL sets how long fetched sets are cached.
func WithTTL(ttl time.Duration) RemoteOption {
	return func(r *RemoteKeySets) { r.ttl = ttl }
}

// WithRefetchAfter sets the minimum age before an unknown kid forces a refetch.
func WithRefetchAfter(d time.Duration) RemoteOption {
	return func(r *RemoteKeySets) { r.refetchAfter = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RemoteOption {
	return func(r *RemoteKeySets) { r.now = now }
}

// WithFetchObserver registers a fetch callback, typically a metric.
func WithFetchObserver(fn FetchObserver) RemoteOption {
	return func(r *RemoteKeySets) { r.observe = fn }
}

// NewRemoteKeySets returns an empty cache.
func NewRemoteKeySets(opts ...RemoteOption) *RemoteKeySets {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = defaultFetchTimeout

	r := &RemoteKeySets{
		client:       client,
		ttl:          DefaultKeySetTTL,
		refetchAfter: DefaultRefetchAfter,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = gocache.New(r.ttl, r.ttl)
	return r
}

// Issuer is the expected iss claim for tokens from pool.
func (r *RemoteKeySets) Issuer(region, pool string) string {
	if r.issuerBase != "" {
		return r.issuerBase + "/" + pool
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, pool)
}

// JWKSURL is where the pool publishes its signing keys.
func (r *RemoteKeySets) JWKSURL(region, pool string) string {
	return r.Issuer(region, pool) + "/.well-known/jwks.json"
}

// Get returns the cached set for (region, pool), fetching it when absent or
// expired.
func (r *RemoteKeySets) Get(ctx context.Context, region, pool string) (*KeySet, error) {
	if v, ok := r.cache.Get(cacheKey(region, pool)); ok {
		return v.(*KeySet), nil
	}
	return r.fetch(ctx, region, pool)
}

// Refresh fetches (region, pool) regardless of what is cached.
func (r *RemoteKeySets) Refresh(ctx context.Context, region, pool string) (*KeySet, error) {
	return r.fetch(ctx, region, pool)
}

// Stale reports whether set is old enough that an unknown kid justifies a
// refetch.
func (r *RemoteKeySets) Stale(set *KeySet) bool {
	return r.now().Sub(set.FetchedAt()) >= r.refetchAfter
}

func (r *RemoteKeySets) fetch(ctx context.Context, region, pool string) (*KeySet, error) {
	key := cacheKey(region, pool)
	v, err, _ := r.group.Do(key, func() (any, error) {
		// The fetch is shared, so one caller going away must not fail the rest.
		ctx := context.WithoutCancel(ctx)

		start := r.now()
		set, err := r.download(ctx, r.JWKSURL(region, pool))
		if r.observe != nil {
			result := "ok"
			if err != nil {
				result = "error"
			}
			r.observe(result, r.now().Sub(start))
		}
		if err != nil {
			return nil, err
		}
		r.cache.SetDefault(key, set)
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeySet), nil
}

func (r *RemoteKeySets) download(ctx context.Context, url string) (*KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrNetwork, url, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrNetwork, url, err)
	}
	return NewKeySet(jwks, r.now()), nil
}

func cacheKey(region, pool string) string {
	return region + "/" + pool
}
