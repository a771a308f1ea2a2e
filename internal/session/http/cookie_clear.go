package http

import (
	"net/http"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/httpx"
	"github.com/certquest/sessiond/pkg/sessionsdk"
)

// CookieClearHandler removes the session cookie.
type CookieClearHandler struct {
	Codec *service.CookieCodec
}

// ServeHTTP godoc
//
//	@Summary		Clear Session Cookie
//	@Description	Expires the session cookie and its legacy names, with and without the production domain. Always succeeds.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	sessionsdk.SuccessResponse
//	@Router			/api/auth-cookie/clear [post].
func (h *CookieClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Codec.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.SuccessResponse{Success: true})
}
