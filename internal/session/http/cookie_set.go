package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/httpx"
	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/sessionsdk"
	"github.com/certquest/sessiond/pkg/slogx"
)

// CookieSetHandler mints the session cookie after sign-in.
type CookieSetHandler struct {
	Codec    *service.CookieCodec
	Verifier identity.Verifier
}

// ServeHTTP godoc
//
//	@Summary		Set Session Cookie
//	@Description	Verifies the Firebase ID token and stores a signed session token wrapping it in the HttpOnly session cookie.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.SetCookieRequest	true	"Firebase ID token"
//	@Success		200		{object}	sessionsdk.SuccessResponse
//	@Failure		400		{object}	sessionsdk.APIError	"MISSING_TOKEN"
//	@Failure		401		{object}	sessionsdk.APIError	"FIREBASE_TOKEN_INVALID"
//	@Failure		429		{object}	sessionsdk.APIError	"RATE_LIMITED"
//	@Failure		500		{object}	sessionsdk.APIError	"SERVER_CONFIGURATION_ERROR"
//	@Router			/api/auth-cookie/set [post].
func (h *CookieSetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req sessionsdk.SetCookieRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		sessionsdk.ErrMissingToken.WriteError(w)
		return
	}
	token := strings.TrimSpace(req.FirebaseToken)
	if token == "" {
		sessionsdk.ErrMissingToken.WriteError(w)
		return
	}

	if !h.Codec.Configured() {
		log.Error("session cookie requested without a signing secret")
		sessionsdk.ErrServerConfiguration.WriteError(w)
		return
	}

	verdict, err := h.Verifier.Verify(ctx, token)
	if err != nil {
		log.Error("upstream verification unavailable", "err", err)
		sessionsdk.ErrUpstreamUnavailable.WriteError(w)
		return
	}
	if !verdict.Valid() {
		log.Info("session cookie refused", "kind", verdict.Kind.String())
		sessionsdk.ErrFirebaseTokenInvalid.WriteError(w)
		return
	}

	tok, err := h.Codec.Issue(ctx, w, token, verdict.Subject, "")
	if err != nil {
		if errors.Is(err, service.ErrServerConfiguration) {
			sessionsdk.ErrServerConfiguration.WriteError(w)
			return
		}
		log.Error("session cookie issue failed", "err", err)
		sessionsdk.ErrInternal.WriteError(w)
		return
	}

	log.Info("session cookie set", "sub", verdict.Subject, "jti", tok.Claims.ID)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.SuccessResponse{Success: true})
}
