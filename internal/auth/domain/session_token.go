package domain

import (
	"errors"
	"net/http"
)

var (
	ErrNotRaw    = errors.New("domain: session token is not a raw value")
	ErrNotCookie = errors.New("domain: session token is not a cookie")
)

// SessionToken holds a token either as its bare string or as a transport
// cookie. Exactly one form is set.
type SessionToken struct {
	raw    string
	cookie *http.Cookie
}

// RawToken wraps a bare token value.
func RawToken(v string) SessionToken { return SessionToken{raw: v} }

// CookieToken wraps a transport cookie. The cookie is copied.
func CookieToken(c *http.Cookie) SessionToken {
	cp := *c
	return SessionToken{cookie: &cp}
}

// IsCookie reports which form the token holds.
func (t SessionToken) IsCookie() bool { return t.cookie != nil }

// Raw returns the bare value, or ErrNotRaw for a cookie token.
func (t SessionToken) Raw() (string, error) {
	if t.cookie != nil {
		return "", ErrNotRaw
	}
	return t.raw, nil
}

// Cookie returns a copy of the cookie, or ErrNotCookie for a raw token.
func (t SessionToken) Cookie() (*http.Cookie, error) {
	if t.cookie == nil {
		return nil, ErrNotCookie
	}
	cp := *t.cookie
	return &cp, nil
}

// Value returns the token string whichever form is held.
func (t SessionToken) Value() string {
	if t.cookie != nil {
		return t.cookie.Value
	}
	return t.raw
}
