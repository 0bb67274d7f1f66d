package http

import (
	"net/http"

	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/fault"
	"github.com/hail-faro/public-backend/internal/auth/service"
	"github.com/hail-faro/public-backend/pkg/authsdk"
	"github.com/hail-faro/public-backend/pkg/httpx"
	"github.com/hail-faro/public-backend/pkg/slogx"
)

// AuthorizeHandler serves GET /auth. It verifies the session's access token
// and answers with an empty body on any failure.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	Cookies          cookie.Factory
}

func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.Cookies.Extract(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	a, err := h.AuthorizeService.Authorize(r.Context(), tokens)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := authsdk.AuthorizeResponse{
		Active:   true,
		Sub:      a.Subject,
		Username: a.Username,
		ClientID: a.ClientID,
		Scope:    a.Scope,
	}
	if !a.ExpiresAt.IsZero() {
		resp.Exp = a.ExpiresAt.Unix()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthorizeHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	fe := fault.Translate(err)
	slogx.FromContext(r.Context()).Info("authorization denied",
		"status", fe.Status,
		"cause", fe.Cause,
		"error", err,
	)
	fe.WriteStatus(w)
}
