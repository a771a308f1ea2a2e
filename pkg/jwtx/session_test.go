package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/certquest/sessiond/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newPair(t *testing.T) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()

	s, err := jwtx.NewHS256Signer(testKey)
	require.NoError(t, err)
	v, err := jwtx.NewHS256Verifier(testKey)
	require.NoError(t, err)
	return s, v
}

func TestNewSessionClaims(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	c := jwtx.NewSessionClaims("upstream-token", time.Hour, now)

	require.Equal(t, "upstream-token", c.Token)
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now.Add(time.Hour), c.Expiry())
	require.NotEmpty(t, c.ID)
	require.False(t, c.IsLegacy())

	t.Run("same second yields distinct jti", func(t *testing.T) {
		other := jwtx.NewSessionClaims("upstream-token", time.Hour, now)
		require.NotEqual(t, c.ID, other.ID)
	})

	t.Run("non-positive ttl falls back to default", func(t *testing.T) {
		d := jwtx.NewSessionClaims("x", 0, now)
		require.Equal(t, now.Add(jwtx.DefaultSessionTTL), d.Expiry())
	})
}

func TestSignAndVerify(t *testing.T) {
	signer, verifier := newPair(t)

	raw, err := signer.Sign(jwtx.NewSessionClaims("upstream-token", time.Hour, time.Now()))
	require.NoError(t, err)

	claims, err := verifier.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "upstream-token", claims.Token)
	require.Equal(t, "HS256", signer.Alg())
}

func TestVerifyClassification(t *testing.T) {
	signer, verifier := newPair(t)

	t.Run("expired token", func(t *testing.T) {
		raw, err := signer.Sign(jwtx.NewSessionClaims("up", time.Hour, time.Now().Add(-2*time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("clock injection", func(t *testing.T) {
		raw, err := signer.Sign(jwtx.NewSessionClaims("up", time.Hour, time.Now()))
		require.NoError(t, err)

		later := verifier.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
		_, err = later.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := jwtx.NewHS256Signer([]byte("another-key-another-key-another!!"))
		require.NoError(t, err)
		raw, err := other.Sign(jwtx.NewSessionClaims("up", time.Hour, time.Now()))
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired and wrong key is a signature failure", func(t *testing.T) {
		other, err := jwtx.NewHS256Signer([]byte("another-key-another-key-another!!"))
		require.NoError(t, err)
		raw, err := other.Sign(jwtx.NewSessionClaims("up", time.Hour, time.Now().Add(-3*time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
		require.NotErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("definitely-not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestNewWithoutKey(t *testing.T) {
	_, err := jwtx.NewHS256Signer(nil)
	require.ErrorIs(t, err, jwtx.ErrNoKey)

	_, err = jwtx.NewHS256Verifier(nil)
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestDecodeUnverifiedOnExpiryOnly(t *testing.T) {
	signer, verifier := newPair(t)

	t.Run("recovers wrapped token from expired session", func(t *testing.T) {
		raw, err := signer.Sign(jwtx.NewSessionClaims("still-good-upstream", time.Hour, time.Now().Add(-2*time.Hour)))
		require.NoError(t, err)

		_, verr := verifier.Verify(raw)
		require.ErrorIs(t, verr, jwtx.ErrExpired)

		claims, err := jwtx.DecodeUnverifiedOnExpiryOnly(raw, verr)
		require.NoError(t, err)
		require.Equal(t, "still-good-upstream", claims.Token)
	})

	t.Run("refuses non-expiry failures", func(t *testing.T) {
		claims, err := jwtx.DecodeUnverifiedOnExpiryOnly("a.b.c", jwtx.ErrInvalidSig)
		require.ErrorIs(t, err, jwtx.ErrNotExpired)
		require.Nil(t, claims)

		_, err = jwtx.DecodeUnverifiedOnExpiryOnly("a.b.c", nil)
		require.ErrorIs(t, err, jwtx.ErrNotExpired)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := jwtx.DecodeUnverifiedOnExpiryOnly("only.two", jwtx.ErrExpired)
		require.ErrorIs(t, err, jwtx.ErrMalformed)

		_, err = jwtx.DecodeUnverifiedOnExpiryOnly("a.!!!.c", jwtx.ErrExpired)
		require.ErrorIs(t, err, jwtx.ErrMalformed)

		notJSON := base64.RawURLEncoding.EncodeToString([]byte("{not json"))
		_, err = jwtx.DecodeUnverifiedOnExpiryOnly(strings.Join([]string{"a", notJSON, "c"}, "."), jwtx.ErrExpired)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}
