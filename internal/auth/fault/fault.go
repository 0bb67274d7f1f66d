// Package fault normalizes every failure the service can produce into a
// status code, a message safe to show the client, and an internal cause.
package fault

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hail-faro/public-backend/internal/auth/config"
	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/idp"
	"github.com/hail-faro/public-backend/internal/auth/service"
	"github.com/hail-faro/public-backend/pkg/cryptox"
	"github.com/hail-faro/public-backend/pkg/httpx"
	"github.com/hail-faro/public-backend/pkg/jwtx"
)

// DefaultMessage is shown for failures with no specific entry.
const DefaultMessage = "An error has occurred"

const (
	msgInternal     = "Internal Server Error"
	msgUnauthorized = "Unauthorized"
)

// Error is a normalized failure. Cause is for logs only; Message is what the
// client sees.
type Error struct {
	Cause   string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Cause == "" {
		return e.Message
	}
	return e.Cause
}

func (e *Error) Unwrap() error { return e.Err }

type entry struct {
	kind    error
	cause   string
	message string
	status  int
}

// table is matched top to bottom with errors.Is. Kinds that wrap other kinds
// come first: jwtx.ErrInvalidSignature wraps jwt.ErrTokenSignatureInvalid.
var table = []entry{
	// Login.
	{service.ErrMissingSecretHash, "Secret hash was never computed", "Missing server side SECRET_HASH", http.StatusUnauthorized},
	{cryptox.ErrMissingSecret, "Secret hash requested without a shared secret", "Missing server side SECRET_HASH", http.StatusUnauthorized},
	{cryptox.ErrHashNotUpdated, "Secret hash finalized before any input", msgInternal, http.StatusInternalServerError},
	{service.ErrNoAuthResult, "Provider answered without an authentication result", msgUnauthorized, http.StatusUnauthorized},
	{service.ErrSessionState, "Auth session used out of order", msgInternal, http.StatusInternalServerError},

	// Configuration.
	{config.ErrEnvNotFound, "Env variable not found", msgInternal, http.StatusInternalServerError},
	{config.ErrEnvInvalid, "Invalid value in env variable", msgInternal, http.StatusInternalServerError},

	// Cookies.
	{cookie.ErrCookie, "Cookie Failed to Set", "There was a problem setting credentials", http.StatusInternalServerError},
	{cookie.ErrMissingCookie, "Session cookie missing", msgUnauthorized, http.StatusUnauthorized},

	// Key set verification.
	{jwtx.ErrNoKeyID, "The token header didn't have a 'kid' key ID value", msgInternal, http.StatusInternalServerError},
	{jwtx.ErrInvalidSignature, "The token's signature is invalid", msgInternal, http.StatusInternalServerError},
	{jwtx.ErrExpired, "The token expired", msgInternal, http.StatusInternalServerError},
	{jwtx.ErrMalformed, "Split, JSON, header or claim validation error", msgUnauthorized, http.StatusUnauthorized},
	{jwtx.ErrNetwork, "Failed to fetch remote jwks key set", msgInternal, http.StatusInternalServerError},
	{jwtx.ErrCacheMiss, "The token's key wasn't in the cached key set", msgInternal, http.StatusInternalServerError},

	// Signing library.
	{jwtx.ErrAlgMismatch, "Alg found in the token header didn't match the key", msgInternal, http.StatusInternalServerError},
	{jwtx.ErrInvalidKey, "Invalid key data", msgInternal, http.StatusInternalServerError},
	{jwt.ErrTokenSignatureInvalid, "Token's signature was not validated", msgInternal, http.StatusInternalServerError},
	{jwt.ErrTokenMalformed, "Header.payload.signature split or decode error", msgInternal, http.StatusInternalServerError},
	{jwt.ErrTokenExpired, "Token expired", msgInternal, http.StatusInternalServerError},

	// Identity provider.
	{idp.ErrConstruction, "Provider request could not be built", msgInternal, http.StatusInternalServerError},
	{idp.ErrDispatch, "Provider request could not be sent", msgInternal, http.StatusInternalServerError},
	{idp.ErrResponse, "Provider response could not be read", msgInternal, http.StatusInternalServerError},
	{idp.ErrService, "Provider rejected the request", msgInternal, http.StatusInternalServerError},
	{idp.ErrTimeout, "Provider request timed out", msgInternal, http.StatusInternalServerError},
}

// Translate normalizes err. An err that already is an *Error is returned as
// is. Unknown failures get an empty cause, DefaultMessage and 500.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	for _, e := range table {
		if errors.Is(err, e.kind) {
			return &Error{Cause: e.cause, Message: e.message, Status: e.status, Err: err}
		}
	}
	return &Error{Message: DefaultMessage, Status: http.StatusInternalServerError, Err: err}
}

// WriteError writes the status with Message as a plain text body.
func (e *Error) WriteError(w http.ResponseWriter) {
	e.challenge(w)
	httpx.WriteText(w, e.Status, e.Message)
}

// WriteStatus writes the status with an empty body.
func (e *Error) WriteStatus(w http.ResponseWriter) {
	e.challenge(w)
	httpx.WriteText(w, e.Status, "")
}

func (e *Error) challenge(w http.ResponseWriter) {
	if e.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Basic")
	}
}
