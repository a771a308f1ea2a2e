package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestCookieCodec_IssueDev(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{}, testSecret)
	rec := httptest.NewRecorder()

	tok, err := codec.Issue(context.Background(), rec, "fb-token", "uid-1", "")
	require.NoError(t, err)
	require.Equal(t, "fb-token", tok.Claims.Token)
	require.NotEmpty(t, tok.Claims.ID)
	require.Equal(t, time.Hour, tok.Claims.Expiry().Sub(tok.Claims.IssuedAt.Time))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, "authToken", c.Name)
	require.Equal(t, tok.Raw, c.Value)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Equal(t, "/", c.Path)
	require.Equal(t, 3600, c.MaxAge)
	require.Empty(t, c.Domain)

	claims, err := codec.Verify(tok.Raw)
	require.NoError(t, err)
	require.Equal(t, tok.Claims.ID, claims.ID)
}

func TestCookieCodec_IssueProduction(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{Production: true, Domain: ".certquest.app"}, testSecret)
	rec := httptest.NewRecorder()

	_, err := codec.Issue(context.Background(), rec, "fb-token", "uid-1", "")
	require.NoError(t, err)

	c := rec.Result().Cookies()[0]
	require.True(t, c.Secure)
	require.Equal(t, "certquest.app", c.Domain) // written without the leading dot
}

func TestCookieCodec_DistinctJTIWithinSameSecond(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{}, testSecret)
	at := time.Unix(1_750_000_000, 0)
	codec.Now = func() time.Time { return at }

	a, err := codec.Mint("fb-token")
	require.NoError(t, err)
	b, err := codec.Mint("fb-token")
	require.NoError(t, err)

	require.NotEqual(t, a.Claims.ID, b.Claims.ID)
	require.NotEqual(t, a.Raw, b.Raw)
}

func TestCookieCodec_MissingSecret(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{}, "")
	require.False(t, codec.Configured())

	rec := httptest.NewRecorder()
	_, err := codec.Issue(context.Background(), rec, "fb-token", "uid", "")
	require.ErrorIs(t, err, service.ErrServerConfiguration)
	require.Empty(t, rec.Result().Cookies())

	_, err = codec.Verify("anything")
	require.ErrorIs(t, err, service.ErrServerConfiguration)
}

func TestCookieCodec_Clear(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{Production: true, Domain: ".certquest.app"}, testSecret)
	rec := httptest.NewRecorder()

	codec.Clear(rec)

	byName := cookiesByName(rec)
	require.Len(t, byName, 2)
	for _, name := range []string{"authToken", "joseToken"} {
		cs := byName[name]
		require.Len(t, cs, 2, name)
		require.Empty(t, cs[0].Domain)
		require.Equal(t, "certquest.app", cs[1].Domain)
		for _, c := range cs {
			require.Empty(t, c.Value)
			require.Equal(t, -1, c.MaxAge) // Max-Age=0 on the wire
			require.Equal(t, "/", c.Path)
		}
	}

	require.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestCookieCodec_ClearCustomName(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{Name: "session"}, testSecret)
	rec := httptest.NewRecorder()

	codec.Clear(rec)

	byName := cookiesByName(rec)
	require.Len(t, byName, 3)
	require.Contains(t, byName, "session")
}

func TestCookieCodec_Read(t *testing.T) {
	codec := newCodec(t, service.CookieConfig{}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, codec.Read(req))

	req.AddCookie(&http.Cookie{Name: "authToken", Value: "abc"})
	require.Equal(t, "abc", codec.Read(req))
}

func TestCookieCodec_LedgerRecord(t *testing.T) {
	st := newStore(t)
	codec := newCodec(t, service.CookieConfig{}, testSecret)
	codec.Ledger = st

	tok, err := codec.Issue(context.Background(), httptest.NewRecorder(), "fb-token", "uid-1", "PREV")
	require.NoError(t, err)

	rec, err := st.Sessions().GetIssuedSession(context.Background(), tok.Claims.ID)
	require.NoError(t, err)
	require.Equal(t, "uid-1", rec.Subject)
	require.Equal(t, "PREV", rec.ReplacesJTI)
	require.Equal(t, cryptox.FingerprintToken(tok.Raw), rec.TokenFingerprint)
	require.True(t, tok.Claims.Expiry().Equal(rec.ExpiresAt))
}
