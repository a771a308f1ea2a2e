package service

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/certquest/sessiond/internal/session/domain"
	"github.com/certquest/sessiond/internal/session/store"
	"github.com/certquest/sessiond/pkg/cryptox"
	"github.com/certquest/sessiond/pkg/jwtx"
	"github.com/certquest/sessiond/pkg/slogx"
)

const (
	DefaultCookieName   = "authToken"
	LegacyCookieName    = "joseToken"
	DefaultCookieDomain = ".certquest.app"

	// sessionKeyInfo is the HKDF context for the session token key.
	sessionKeyInfo = "sessiond session token v1"
)

// ErrServerConfiguration is returned when no signing secret is configured.
var ErrServerConfiguration = errors.New("service: session signing secret is not configured")

type CookieConfig struct {
	Name       string
	Domain     string
	Production bool
	TTL        time.Duration
}

// IssuedToken is a freshly minted session token.
type IssuedToken struct {
	Raw    string
	Claims jwtx.SessionClaims
}

// CookieCodec mints, reads and destroys the session cookie.
type CookieCodec struct {
	cfg      CookieConfig
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier

	// Ledger records every issuance when set.
	Ledger store.Store

	Now func() time.Time
}

// NewCookieCodec derives the signing key from secret. An empty secret yields a
// codec that reports ErrServerConfiguration on every mint and verify.
func NewCookieCodec(cfg CookieConfig, secret string) (*CookieCodec, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	if cfg.Domain == "" {
		cfg.Domain = DefaultCookieDomain
	}
	if cfg.TTL <= 0 {
		cfg.TTL = jwtx.DefaultSessionTTL
	}

	c := &CookieCodec{cfg: cfg, Now: time.Now}
	if secret == "" {
		return c, nil
	}

	key, err := cryptox.DeriveKey(secret, sessionKeyInfo, cryptox.SessionKeySize)
	if err != nil {
		return nil, err
	}
	if c.signer, err = jwtx.NewHS256Signer(key); err != nil {
		return nil, err
	}
	if c.verifier, err = jwtx.NewHS256Verifier(key); err != nil {
		return nil, err
	}
	return c, nil
}

// Configured reports whether a signing secret is present.
func (c *CookieCodec) Configured() bool { return c.signer != nil }

func (c *CookieCodec) Name() string { return c.cfg.Name }

// Mint signs a session token wrapping upstream.
func (c *CookieCodec) Mint(upstream string) (IssuedToken, error) {
	if !c.Configured() {
		return IssuedToken{}, ErrServerConfiguration
	}

	claims := jwtx.NewSessionClaims(upstream, c.cfg.TTL, c.Now())
	raw, err := c.signer.Sign(claims)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Raw: raw, Claims: claims}, nil
}

// Write stores raw in the session cookie.
func (c *CookieCodec) Write(w http.ResponseWriter, raw string) {
	http.SetCookie(w, c.cookie(c.cfg.Name, raw, int(c.cfg.TTL.Seconds()), c.productionDomain()))
}

// Issue mints a token, writes the cookie and records the issuance. A ledger
// failure is logged and does not fail the issuance.
func (c *CookieCodec) Issue(ctx context.Context, w http.ResponseWriter, upstream, subject, replacesJTI string) (IssuedToken, error) {
	tok, err := c.Mint(upstream)
	if err != nil {
		return IssuedToken{}, err
	}
	c.Write(w, tok.Raw)

	if c.Ledger != nil {
		rec := domain.IssuedSession{
			JTI:              tok.Claims.ID,
			Subject:          subject,
			TokenFingerprint: cryptox.FingerprintToken(tok.Raw),
			IssuedAt:         tok.Claims.IssuedAt.Time,
			ExpiresAt:        tok.Claims.Expiry(),
			ReplacesJTI:      replacesJTI,
		}
		if err := c.Ledger.Sessions().RecordIssuedSession(ctx, rec); err != nil {
			slogx.FromContext(ctx).Warn("session ledger write failed", "jti", rec.JTI, "err", err)
		}
	}
	return tok, nil
}

// Clear expires the primary and legacy cookies, each once without and once
// with the explicit production domain, and marks the response uncacheable.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	names := []string{c.cfg.Name, DefaultCookieName, LegacyCookieName}
	slices.Sort(names)
	names = slices.Compact(names)

	for _, name := range names {
		http.SetCookie(w, c.cookie(name, "", -1, ""))
		http.SetCookie(w, c.cookie(name, "", -1, c.cfg.Domain))
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// Read returns the session cookie value, or "" when absent.
func (c *CookieCodec) Read(r *http.Request) string {
	ck, err := r.Cookie(c.cfg.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// Verify checks signature and expiry of raw.
func (c *CookieCodec) Verify(raw string) (*jwtx.SessionClaims, error) {
	if c.verifier == nil {
		return nil, ErrServerConfiguration
	}
	return c.verifier.Verify(raw)
}

func (c *CookieCodec) productionDomain() string {
	if c.cfg.Production {
		return c.cfg.Domain
	}
	return ""
}

// cookie builds a session cookie. maxAge < 0 expires it immediately.
func (c *CookieCodec) cookie(name, value string, maxAge int, domain string) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cfg.Production,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge < 0 {
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}
