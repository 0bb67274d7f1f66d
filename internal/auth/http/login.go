package http

import (
	"net/http"
	"strings"

	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/fault"
	"github.com/hail-faro/public-backend/internal/auth/service"
	"github.com/hail-faro/public-backend/pkg/httpx"
	"github.com/hail-faro/public-backend/pkg/slogx"
)

const (
	msgLoggedIn       = "Logged In"
	msgMissingFields  = "Missing email or password"
	msgInvalidRequest = "Invalid request body"
)

// LoginHandler serves POST /login. The form carries email and password; a
// successful login answers with the three session cookies.
type LoginHandler struct {
	LoginService *service.LoginService
	Cookies      cookie.Factory
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		httpx.WriteText(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	bundle, err := h.LoginService.Login(r.Context(), email, password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tokens, err := h.Cookies.Package(bundle, r.Host)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Cookies.Write(w, tokens); err != nil {
		h.fail(w, r, err)
		return
	}

	log.Debug("session cookies written", "expires_in", bundle.ExpiresIn)
	httpx.WriteText(w, http.StatusOK, msgLoggedIn)
}

func (h *LoginHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	fe := fault.Translate(err)
	slogx.FromContext(r.Context()).Warn("login rejected",
		"status", fe.Status,
		"cause", fe.Cause,
		"error", err,
	)
	fe.WriteError(w)
}
