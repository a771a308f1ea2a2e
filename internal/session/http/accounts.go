package http

import (
	"errors"
	"net/http"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/httpx"
	"github.com/certquest/sessiond/pkg/sessionsdk"
	"github.com/certquest/sessiond/pkg/slogx"
)

// AccountHandler serves the API login and custom-claims endpoints.
type AccountHandler struct {
	AccountService *service.AccountService
}

// HandleLogin godoc
//
//	@Summary		API Login
//	@Description	Exchanges a Firebase ID token for the internal user id, creating the account on first login.
//	@Tags			Accounts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	sessionsdk.LoginResponse
//	@Failure		401	{object}	sessionsdk.APIError	"UNAUTHORIZED"
//	@Failure		429	{object}	sessionsdk.APIError	"RATE_LIMITED"
//	@Failure		500	{object}	sessionsdk.APIError	"INTERNAL_ERROR"
//	@Router			/api/auth/login [post].
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		sessionsdk.ErrUnauthorized.WriteError(w)
		return
	}

	acc, err := h.AccountService.Login(ctx, subject)
	if err != nil {
		slogx.FromContext(ctx).Error("api login failed", "sub", subject, "err", err)
		sessionsdk.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.LoginResponse{APIUserID: acc.APIUserID})
}

// HandleSetClaims godoc
//
//	@Summary		Set API User ID Claim
//	@Description	Stores api_user_id in the caller's Firebase custom claims. Callers may only set the id of their own account.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		sessionsdk.SetClaimsRequest	true	"internal user id"
//	@Success		200		{object}	sessionsdk.SuccessResponse
//	@Failure		400		{object}	sessionsdk.APIError	"INVALID_REQUEST"
//	@Failure		401		{object}	sessionsdk.APIError	"UNAUTHORIZED"
//	@Failure		403		{object}	sessionsdk.APIError	"FORBIDDEN"
//	@Failure		500		{object}	sessionsdk.APIError	"INTERNAL_ERROR"
//	@Router			/api/auth/set-claims [post].
func (h *AccountHandler) HandleSetClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		sessionsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req sessionsdk.SetClaimsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.AccountService.SetClaims(ctx, subject, req.APIUserID)
	switch {
	case err == nil:
		log.Info("custom claims updated", "sub", subject, "api_user_id", req.APIUserID)
		httpx.WriteJSON(w, http.StatusOK, sessionsdk.SuccessResponse{Success: true})
	case errors.Is(err, service.ErrInvalidAPIUserID):
		sessionsdk.ErrInvalidRequest.WithMessage("api_user_id is missing or a placeholder").WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		sessionsdk.ErrForbidden.WriteError(w)
	default:
		log.Error("set claims failed", "sub", subject, "err", err)
		sessionsdk.ErrInternal.WriteError(w)
	}
}
