package sessionsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeNavigator struct {
	path     string
	replaced []string
}

func (n *fakeNavigator) Pathname() string      { return n.path }
func (n *fakeNavigator) Replace(target string) { n.replaced = append(n.replaced, target) }

type fakeStore struct{ removed []string }

func (s *fakeStore) Remove(keys ...string) { s.removed = append(s.removed, keys...) }

type fakeClearer struct{ calls int }

func (c *fakeClearer) ClearCookie(context.Context) error {
	c.calls++
	return nil
}

type fakeRefresher struct{ err error }

func (r fakeRefresher) RefreshCookie(context.Context) (*RefreshResponse, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &RefreshResponse{Success: true, UserID: "uid"}, nil
}

func newHandler(path string) (*FailureHandler, *fakeNavigator, *fakeStore, *fakeClearer) {
	nav := &fakeNavigator{path: path}
	store := &fakeStore{}
	cookies := &fakeClearer{}
	return &FailureHandler{Cookies: cookies, Storage: store, Navigator: nav}, nav, store, cookies
}

func TestHandleAuthenticationFailure_NeverRedirectsFromAuthRoutes(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/signin", "/signup", "/forgot-password", "/signin/reset"} {
		for _, redirect := range []bool{true, false} {
			h, nav, _, cookies := newHandler(path)

			require.False(t, h.HandleAuthenticationFailure(context.Background(), "msg", redirect), path)
			require.Empty(t, nav.replaced, path)
			require.Equal(t, 1, cookies.calls)
		}
	}
}

func TestHandleAuthenticationFailure_ProtectedRouteGating(t *testing.T) {
	t.Parallel()

	t.Run("protected route redirects", func(t *testing.T) {
		h, nav, store, cookies := newHandler("/main/certifications/5")

		require.True(t, h.HandleAuthenticationFailure(context.Background(), "msg", true))
		require.Equal(t, []string{"/signin?error=msg"}, nav.replaced)
		require.Equal(t, DefaultStorageKeys, store.removed)
		require.Equal(t, 1, cookies.calls)
	})

	t.Run("public route does not redirect", func(t *testing.T) {
		h, nav, store, _ := newHandler("/pricing")

		require.False(t, h.HandleAuthenticationFailure(context.Background(), "msg", true))
		require.Empty(t, nav.replaced)
		require.NotEmpty(t, store.removed, "state is cleared even without a redirect")
	})

	t.Run("redirect disabled", func(t *testing.T) {
		h, nav, _, _ := newHandler("/main")

		require.False(t, h.HandleAuthenticationFailure(context.Background(), "msg", false))
		require.Empty(t, nav.replaced)
	})

	t.Run("message is query-escaped", func(t *testing.T) {
		h, nav, _, _ := newHandler("/main")

		h.HandleAuthenticationFailure(context.Background(), "Session expired & gone", true)
		require.Equal(t, []string{"/signin?error=Session+expired+%26+gone"}, nav.replaced)
	})

	t.Run("cache is reset", func(t *testing.T) {
		ex := &countingExchanger{id: "U1"}
		cache := NewAuthSessionCache(ex)
		cache.PerformAPILogin(context.Background(), "tok")

		h, _, _, _ := newHandler("/main")
		h.Cache = cache
		h.HandleAuthenticationFailure(context.Background(), "msg", true)

		cache.PerformAPILogin(context.Background(), "tok")
		require.Equal(t, int32(2), ex.calls.Load())
	})
}

func TestRouteClassifier(t *testing.T) {
	t.Parallel()

	rc := DefaultRouteClassifier()

	require.True(t, rc.IsProtected("/main"))
	require.True(t, rc.IsProtected("/main/exams"))
	require.False(t, rc.IsProtected("/mainframe"))
	require.False(t, rc.IsProtected("/"))
	require.True(t, rc.IsAuthRoute("/signup"))
	require.False(t, rc.IsAuthRoute("/signups"))

	custom := RouteClassifier{Protected: []string{"/main"}, Auth: []string{"/main/login"}}
	require.False(t, custom.ShouldRedirect("/main/login"))
	require.True(t, custom.ShouldRedirect("/main/home"))
}

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("refresh succeeds", func(t *testing.T) {
		h, nav, _, cookies := newHandler("/main")

		require.NoError(t, h.Recover(context.Background(), fakeRefresher{}))
		require.Empty(t, nav.replaced)
		require.Zero(t, cookies.calls)
	})

	t.Run("reauth required", func(t *testing.T) {
		h, nav, _, _ := newHandler("/main/dashboard")

		err := h.Recover(context.Background(), fakeRefresher{err: ErrFirebaseTokenInvalid})
		require.ErrorIs(t, err, ErrFirebaseTokenInvalid)
		require.Equal(t, []string{"/signin?error=Session+expired"}, nav.replaced)
	})

	t.Run("rate limited is not an auth failure", func(t *testing.T) {
		h, nav, _, cookies := newHandler("/main")

		err := h.Recover(context.Background(), fakeRefresher{err: &APIError{StatusCode: http.StatusTooManyRequests, Code: ErrorCodeRateLimited}})
		require.Error(t, err)
		require.Empty(t, nav.replaced)
		require.Zero(t, cookies.calls)
	})
}

func TestIsAuthenticationError(t *testing.T) {
	t.Parallel()

	require.False(t, IsAuthenticationError(nil))
	require.True(t, IsAuthenticationError(fmt.Errorf("wrap: %w", ErrAuthentication)))
	require.True(t, IsAuthenticationError(&APIError{StatusCode: http.StatusUnauthorized, Code: "X"}))
	require.True(t, IsAuthenticationError(errors.New("request failed: Session expired")))
	require.True(t, IsAuthenticationError(errors.New("Authentication failed for user")))
	require.False(t, IsAuthenticationError(&APIError{StatusCode: http.StatusInternalServerError, Code: ErrorCodeInternal}))
	require.False(t, IsAuthenticationError(errors.New("network down")))
}
