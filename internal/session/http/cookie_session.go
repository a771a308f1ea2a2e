package http

import (
	"errors"
	"net/http"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/httpx"
	"github.com/certquest/sessiond/pkg/sessionsdk"
	"github.com/certquest/sessiond/pkg/slogx"
)

// SessionHandler reports the state of the session cookie.
type SessionHandler struct {
	SessionInfoService *service.SessionInfoService
}

// ServeHTTP godoc
//
//	@Summary		Session Status
//	@Description	Verifies the session cookie and returns the Firebase uid it belongs to. Expired or invalid cookies report authenticated=false.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	sessionsdk.SessionInfo
//	@Failure		500	{object}	sessionsdk.APIError	"SERVER_CONFIGURATION_ERROR, INTERNAL_ERROR"
//	@Router			/api/auth-cookie/session [get].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.SessionInfoService.Describe(ctx, r)
	if err != nil {
		if errors.Is(err, service.ErrServerConfiguration) {
			sessionsdk.ErrServerConfiguration.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("session lookup failed", "err", err)
		sessionsdk.ErrInternal.WriteError(w)
		return
	}

	resp := sessionsdk.SessionInfo{
		Authenticated: info.Authenticated,
		UserID:        info.Subject,
		Legacy:        info.Legacy,
	}
	if info.Authenticated {
		exp := info.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
