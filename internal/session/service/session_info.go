package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/certquest/sessiond/internal/session/store"
	"github.com/certquest/sessiond/pkg/identity"
)

// SessionInfo describes the session cookie of a request.
type SessionInfo struct {
	Authenticated bool
	Subject       string
	ExpiresAt     time.Time
	Legacy        bool
}

// SessionInfoService resolves who a session cookie belongs to.
type SessionInfoService struct {
	Codec    *CookieCodec
	Ledger   store.Store
	Verifier identity.Verifier
}

// Describe verifies the session cookie. The subject comes from the issuance
// ledger; legacy tokens and tokens unknown to the ledger fall back to
// upstream verification of the wrapped token.
func (s *SessionInfoService) Describe(ctx context.Context, r *http.Request) (SessionInfo, error) {
	raw := s.Codec.Read(r)
	if raw == "" {
		return SessionInfo{}, nil
	}

	claims, err := s.Codec.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrServerConfiguration) {
			return SessionInfo{}, err
		}
		return SessionInfo{}, nil
	}

	info := SessionInfo{
		ExpiresAt: claims.Expiry(),
		Legacy:    claims.IsLegacy(),
	}

	if !info.Legacy && s.Ledger != nil {
		rec, err := s.Ledger.Sessions().GetIssuedSession(ctx, claims.ID)
		switch {
		case err == nil:
			info.Authenticated = true
			info.Subject = rec.Subject
			return info, nil
		case !errors.Is(err, store.ErrNotFound):
			return SessionInfo{}, err
		}
	}

	verdict, err := s.Verifier.Verify(ctx, claims.Token)
	if err != nil {
		return SessionInfo{}, err
	}
	if verdict.Valid() {
		info.Authenticated = true
		info.Subject = verdict.Subject
	}
	return info, nil
}
