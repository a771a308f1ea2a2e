package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSessionInfo(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	v := &fakeVerifier{verdicts: map[string]identity.Verdict{"fb-ok": valid("uid-1")}}
	codec := newCodec(t, service.CookieConfig{}, testSecret)
	codec.Ledger = st
	svc := &service.SessionInfoService{Codec: codec, Ledger: st, Verifier: v}

	t.Run("no cookie", func(t *testing.T) {
		info, err := svc.Describe(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.False(t, info.Authenticated)
	})

	t.Run("ledger hit skips upstream", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tok, err := codec.Issue(ctx, rec, "fb-ok", "uid-1", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(rec.Result().Cookies()[0])

		before := v.calls
		info, err := svc.Describe(ctx, req)
		require.NoError(t, err)
		require.True(t, info.Authenticated)
		require.Equal(t, "uid-1", info.Subject)
		require.False(t, info.Legacy)
		require.True(t, tok.Claims.Expiry().Equal(info.ExpiresAt))
		require.Equal(t, before, v.calls)
	})

	t.Run("expired cookie", func(t *testing.T) {
		req, _ := mintCookie(t, codec, "fb-ok", time.Now().Add(-2*time.Hour))
		info, err := svc.Describe(ctx, req)
		require.NoError(t, err)
		require.False(t, info.Authenticated)
	})

	t.Run("legacy token resolved upstream", func(t *testing.T) {
		key, err := deriveTestKey()
		require.NoError(t, err)
		signer, err := jwtx.NewHS256Signer(key)
		require.NoError(t, err)

		now := time.Now()
		raw, err := signer.Sign(jwtx.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			Token: "fb-ok",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "authToken", Value: raw})

		info, err := svc.Describe(ctx, req)
		require.NoError(t, err)
		require.True(t, info.Authenticated)
		require.True(t, info.Legacy)
		require.Equal(t, "uid-1", info.Subject)
	})
}
