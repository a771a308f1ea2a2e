package sessionsdk

import (
	"context"
	"fmt"
	"log/slog"
)

// CookieSetter mints the session cookie. *SDKClient implements it.
type CookieSetter interface {
	SetCookie(ctx context.Context, firebaseToken string) error
}

// AuthSetup runs the post-sign-in coordination: session cookie, API login and
// custom claims.
type AuthSetup struct {
	Cookies    CookieSetter
	Logins     *AuthSessionCache
	Reconciler *ClaimsReconciler
	Logger     *slog.Logger
}

// SetupResult is the outcome of PerformAuthSetup.
type SetupResult struct {
	Success   bool
	APIUserID string

	CookieSet     bool
	ClaimsPatched bool

	Err error
}

// PerformAuthSetup sets the session cookie, exchanges the identity token via
// API login and reads custom claims, all concurrently. The API-login id wins
// over claims; when claims lack it or disagree, they are patched and the token
// is force-refreshed. Without any usable id the result carries ErrNoAPIUserID.
func (s *AuthSetup) PerformAuthSetup(ctx context.Context, src TokenSource) SetupResult {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	tok, err := src.IDToken(ctx, false)
	if err != nil {
		return SetupResult{Err: fmt.Errorf("get identity token: %w", err)}
	}

	var loginID, claimsID string
	errs := JoinAll(ctx,
		func(ctx context.Context) error {
			return s.Cookies.SetCookie(ctx, tok.Raw)
		},
		func(ctx context.Context) error {
			loginID = s.Logins.PerformAPILogin(ctx, tok.Raw)
			return nil
		},
		func(ctx context.Context) error {
			claimsID = s.Reconciler.GetFromClaims(ctx, src)
			return nil
		},
	)

	res := SetupResult{CookieSet: errs[0] == nil}
	if errs[0] != nil {
		log.WarnContext(ctx, "session cookie not set", "err", errs[0])
	}
	for _, e := range errs[1:] {
		if e != nil {
			log.WarnContext(ctx, "auth setup branch failed", "err", e)
		}
	}

	if claimsID == "" {
		claimsID = s.Reconciler.RetryGetFromClaims(ctx, src)
	}

	if loginID != "" && loginID != claimsID {
		if s.Reconciler.PatchClaims(ctx, tok.Raw, loginID) {
			res.ClaimsPatched = true
			if _, err := src.IDToken(ctx, true); err != nil {
				log.WarnContext(ctx, "token refresh after claims patch failed", "err", err)
			}
		}
	}

	res.APIUserID = loginID
	if res.APIUserID == "" {
		res.APIUserID = claimsID
	}
	if res.APIUserID == "" {
		res.Err = ErrNoAPIUserID
		return res
	}

	res.Success = true
	return res
}
