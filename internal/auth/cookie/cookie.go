// Package cookie turns a token bundle into session cookies and back.
package cookie

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hail-faro/public-backend/internal/auth/domain"
)

var (
	// ErrCookie is returned when a cookie cannot be built or attached.
	ErrCookie = errors.New("cookie: failed to build session cookie")

	// ErrMissingCookie is returned by Extract when a session cookie is absent.
	ErrMissingCookie = errors.New("cookie: missing session cookie")
)

// Names lists the session cookies in the order they are written.
var Names = []string{domain.CookieAccessToken, domain.CookieIDToken, domain.CookieRefreshToken}

// Tokens maps cookie name to token.
type Tokens map[string]domain.SessionToken

// Factory builds session cookies. Domain, when set, overrides the request
// host as the cookie domain.
type Factory struct {
	Domain string
	Secure bool
	Now    func() time.Time
}

// Package converts b into the three session cookies for host. Max-Age is
// b.ExpiresIn seconds and Expires is now plus the same duration.
func (f Factory) Package(b domain.TokenBundle, host string) (Tokens, error) {
	if b.ExpiresIn < 0 {
		return nil, fmt.Errorf("%w: negative lifetime %d", ErrCookie, b.ExpiresIn)
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	expires := now().Add(time.Duration(b.ExpiresIn) * time.Second).UTC()

	dom := f.Domain
	if dom == "" {
		dom = hostOnly(host)
	}

	raw := b.Tokens()
	out := make(Tokens, len(Names))
	for _, name := range Names {
		c := &http.Cookie{
			Name:     name,
			Value:    raw[name],
			Path:     "/",
			Domain:   dom,
			Expires:  expires,
			MaxAge:   int(b.ExpiresIn),
			Secure:   f.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		if err := c.Valid(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCookie, name, err)
		}
		out[name] = domain.CookieToken(c)
	}
	return out, nil
}

// Write sets every cookie in t on w. Raw tokens are refused.
func (f Factory) Write(w http.ResponseWriter, t Tokens) error {
	cookies := make([]*http.Cookie, 0, len(Names))
	for _, name := range Names {
		tok, ok := t[name]
		if !ok {
			return fmt.Errorf("%w: %s not packaged", ErrCookie, name)
		}
		c, err := tok.Cookie()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCookie, name, err)
		}
		cookies = append(cookies, c)
	}
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
	return nil
}

// Extract reads the three session cookies from r as raw tokens. Any absent
// cookie fails the whole extraction.
func (f Factory) Extract(r *http.Request) (Tokens, error) {
	out := make(Tokens, len(Names))
	for _, name := range Names {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingCookie, name)
		}
		out[name] = domain.RawToken(c.Value)
	}
	return out, nil
}

// hostOnly strips any port and IPv6 brackets from a Host header value.
func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
