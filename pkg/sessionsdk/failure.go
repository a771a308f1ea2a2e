package sessionsdk

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
)

// SignInPath is where unauthenticated users are sent.
const SignInPath = "/signin"

// RouteClassifier sorts paths into protected routes and auth routes by
// segment-aware prefix match.
type RouteClassifier struct {
	Protected []string
	Auth      []string
}

// DefaultRouteClassifier returns the application's route lists.
func DefaultRouteClassifier() RouteClassifier {
	return RouteClassifier{
		Protected: []string{"/main"},
		Auth:      []string{SignInPath, "/signup", "/forgot-password"},
	}
}

func (rc RouteClassifier) IsProtected(path string) bool { return matchAny(path, rc.Protected) }

func (rc RouteClassifier) IsAuthRoute(path string) bool { return matchAny(path, rc.Auth) }

// ShouldRedirect reports whether a failure on path should lead to sign-in.
// Auth routes never redirect.
func (rc RouteClassifier) ShouldRedirect(path string) bool {
	return rc.IsProtected(path) && !rc.IsAuthRoute(path)
}

func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Navigator is the current page location.
type Navigator interface {
	Pathname() string
	// Replace navigates without leaving a history entry.
	Replace(target string)
}

// StateStore holds client-side session leftovers.
type StateStore interface {
	Remove(keys ...string)
}

// CookieClearer removes the session cookie. *SDKClient implements it.
type CookieClearer interface {
	ClearCookie(ctx context.Context) error
}

// Refresher renews the session cookie. *SDKClient implements it.
type Refresher interface {
	RefreshCookie(ctx context.Context) (*RefreshResponse, error)
}

// DefaultStorageKeys are removed from the StateStore on failure.
var DefaultStorageKeys = []string{"authToken", "joseToken", "apiUserId"}

// FailureHandler resets client state after an authentication failure.
type FailureHandler struct {
	Cookies   CookieClearer
	Storage   StateStore
	Navigator Navigator
	Cache     *AuthSessionCache

	Routes      RouteClassifier
	StorageKeys []string
	Logger      *slog.Logger
}

// HandleAuthenticationFailure clears the session cookie, the stored keys and
// the login cache. It then replaces the location with the sign-in page
// carrying message, but only when shouldRedirect is set and the current path
// is protected. It reports whether it redirected.
func (h *FailureHandler) HandleAuthenticationFailure(ctx context.Context, message string, shouldRedirect bool) bool {
	log := h.Logger
	if log == nil {
		log = slog.Default()
	}

	if h.Cookies != nil {
		if err := h.Cookies.ClearCookie(ctx); err != nil {
			log.WarnContext(ctx, "clear session cookie failed", "err", err)
		}
	}
	if h.Storage != nil {
		keys := h.StorageKeys
		if keys == nil {
			keys = DefaultStorageKeys
		}
		h.Storage.Remove(keys...)
	}
	if h.Cache != nil {
		h.Cache.Reset()
	}

	if !shouldRedirect || h.Navigator == nil {
		return false
	}

	routes := h.Routes
	if routes.Protected == nil && routes.Auth == nil {
		routes = DefaultRouteClassifier()
	}
	if !routes.ShouldRedirect(h.Navigator.Pathname()) {
		return false
	}

	if message == "" {
		message = "Authentication failed"
	}
	h.Navigator.Replace(SignInPath + "?error=" + url.QueryEscape(message))
	return true
}

// Recover tries to renew the session after a 401. When the refresh fails with
// an error that requires re-authentication, the failure is handled and the
// refresh error returned.
func (h *FailureHandler) Recover(ctx context.Context, r Refresher) error {
	_, err := r.RefreshCookie(ctx)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.RequiresReauth || apiErr.StatusCode == 401) {
		h.HandleAuthenticationFailure(ctx, "Session expired", true)
	}
	return err
}
