package jwtx

import (
	"time"

	"github.com/certquest/sessiond/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token and of the cookie
// that carries it.
const DefaultSessionTTL = time.Hour

// SessionClaims are the claims of the session token (historically called the
// "jose token"). The token wraps the upstream identity token so the session
// can be renewed without a fresh sign-in while the upstream token remains
// valid.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Token is the opaque upstream identity token.
	Token string `json:"token"`
}

// NewSessionClaims builds the claims for a freshly minted session token. The
// jti is a ULID derived from the issue instant, so two tokens issued in the
// same second remain distinguishable.
func NewSessionClaims(upstreamToken string, ttl time.Duration, now time.Time) SessionClaims {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		Token: upstreamToken,
	}
}

// IsLegacy reports whether the token predates per-issuance ids. Clients use
// this to force a re-issue of old cookies.
func (c *SessionClaims) IsLegacy() bool {
	return c.ID == ""
}

// Expiry returns the exp claim or the zero time when absent.
func (c *SessionClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
