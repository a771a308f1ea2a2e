package sessionsdk

import (
	"context"
	"log/slog"
	"time"

	"github.com/certquest/sessiond/pkg/identity"
)

// DefaultRetryDelay is the wait before re-reading claims of a just-created
// account.
const DefaultRetryDelay = 2 * time.Second

// IDToken is an identity token together with its decoded claims.
type IDToken struct {
	Raw    string
	Claims map[string]any
}

// TokenSource hands out the signed-in user's identity token. forceRefresh
// fetches a new token from the provider so recently changed custom claims
// become visible.
type TokenSource interface {
	IDToken(ctx context.Context, forceRefresh bool) (IDToken, error)
}

// ClaimsPatcher writes the internal user id into custom claims.
// *SDKClient implements it.
type ClaimsPatcher interface {
	SetClaims(ctx context.Context, idToken, apiUserID string) error
}

type ReconcilerConfig struct {
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// ClaimsReconciler reads and patches the api_user_id custom claim.
type ClaimsReconciler struct {
	patcher    ClaimsPatcher
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewClaimsReconciler(p ClaimsPatcher, cfg ReconcilerConfig) *ClaimsReconciler {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ClaimsReconciler{
		patcher:    p,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// GetFromClaims force-refreshes the token and returns its api_user_id claim.
// Missing and placeholder ids yield "".
func (r *ClaimsReconciler) GetFromClaims(ctx context.Context, src TokenSource) string {
	tok, err := src.IDToken(ctx, true)
	if err != nil {
		r.logger.WarnContext(ctx, "claims read failed", "err", err)
		return ""
	}
	return identity.APIUserIDFromClaims(tok.Claims)
}

// RetryGetFromClaims waits for the retry delay, then calls GetFromClaims.
// It returns "" if ctx ends first.
func (r *ClaimsReconciler) RetryGetFromClaims(ctx context.Context, src TokenSource) string {
	t := time.NewTimer(r.retryDelay)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
		return ""
	}
	return r.GetFromClaims(ctx, src)
}

// PatchClaims reports whether the claims update succeeded.
func (r *ClaimsReconciler) PatchClaims(ctx context.Context, idToken, apiUserID string) bool {
	if err := r.patcher.SetClaims(ctx, idToken, apiUserID); err != nil {
		r.logger.WarnContext(ctx, "claims patch failed", "err", err)
		return false
	}
	return true
}
