package authsdk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for any non-2xx response from the auth service.
// Message is the plain text body, which is empty for /auth failures.
type Error struct {
	StatusCode int
	Message    string

	// Challenge is the WWW-Authenticate header, set on 401 responses.
	Challenge string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authsdk: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("authsdk: %d %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the auth service.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsRateLimited reports whether err is a 429 from the auth service.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

func hasStatus(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == code
}

// parseErrorResponse converts a non-2xx response into an *Error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
		Challenge:  resp.Header.Get("WWW-Authenticate"),
	}
}
