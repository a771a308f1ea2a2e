package http

import (
	"net/http"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/httpx"
	"github.com/certquest/sessiond/pkg/sessionsdk"
)

// CookieRefreshHandler renews the session cookie.
type CookieRefreshHandler struct {
	RefreshService *service.RefreshService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Session Cookie
//	@Description	Renews the session cookie. An expired session token is accepted as long as the Firebase ID token it wraps is still valid.
//	@Description	Every failure except NO_TOKEN, SERVER_CONFIGURATION_ERROR and RATE_LIMITED clears the cookie.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	sessionsdk.RefreshResponse
//	@Failure		401	{object}	sessionsdk.APIError	"NO_TOKEN, MALFORMED_TOKEN, INVALID_TOKEN, INVALID_TOKEN_STRUCTURE, FIREBASE_TOKEN_INVALID"
//	@Failure		429	{object}	sessionsdk.APIError	"RATE_LIMITED"
//	@Failure		500	{object}	sessionsdk.APIError	"SERVER_CONFIGURATION_ERROR, REFRESH_FAILED"
//	@Header			429	{integer}	Retry-After	"seconds until the next attempt is allowed"
//	@Router			/api/auth-cookie/refresh [post].
func (h *CookieRefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out := h.RefreshService.Refresh(r.Context(), w, r)
	if !out.Success() {
		out.Err.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.RefreshResponse{
		Success: true,
		Message: "Session refreshed",
		UserID:  out.Subject,
	})
}
