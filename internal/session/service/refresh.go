package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/jwtx"
	"github.com/certquest/sessiond/pkg/sessionsdk"
	"github.com/certquest/sessiond/pkg/slogx"
)

// RefreshState is a step of a refresh attempt.
type RefreshState int

const (
	StateStart RefreshState = iota
	StateVerify
	StateDecodeUnverified
	StateExtractUpstream
	StateRevalidateUpstream
	StateReissue
)

func (s RefreshState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateVerify:
		return "verify"
	case StateDecodeUnverified:
		return "decode_unverified"
	case StateExtractUpstream:
		return "extract_upstream"
	case StateRevalidateUpstream:
		return "revalidate_upstream"
	case StateReissue:
		return "reissue"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RefreshOutcome is the terminal result of a refresh attempt. Err is nil on
// success.
type RefreshOutcome struct {
	Err *sessionsdk.APIError

	Subject string
	Token   IssuedToken

	// Trail lists the states visited, in order.
	Trail []RefreshState

	CookieCleared bool
}

func (o RefreshOutcome) Success() bool { return o.Err == nil }

func (o RefreshOutcome) Status() int {
	if o.Err == nil {
		return http.StatusOK
	}
	return o.Err.StatusCode
}

// Reached reports whether the attempt passed through st.
func (o RefreshOutcome) Reached(st RefreshState) bool {
	for _, s := range o.Trail {
		if s == st {
			return true
		}
	}
	return false
}

// RefreshService renews the session cookie while the wrapped upstream token
// is still accepted by the identity provider.
type RefreshService struct {
	Codec    *CookieCodec
	Verifier identity.Verifier
}

// Refresh reads the session cookie from r and writes the renewed or cleared
// cookie to w. Every path ends in a RefreshOutcome; a panic becomes
// REFRESH_FAILED.
func (s *RefreshService) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) (out RefreshOutcome) {
	l := slogx.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error("session refresh panicked", "panic", rec)
			out.Err = sessionsdk.ErrRefreshFailed
			out.CookieCleared = s.tryClear(w)
		}
	}()

	fail := func(e *sessionsdk.APIError, clear bool) RefreshOutcome {
		out.Err = e
		if clear {
			s.Codec.Clear(w)
			out.CookieCleared = true
		}
		l.Info("session refresh rejected", "code", e.Code, "state", out.Trail[len(out.Trail)-1].String())
		return out
	}

	out.Trail = append(out.Trail, StateStart)
	if !s.Codec.Configured() {
		return fail(sessionsdk.ErrServerConfiguration, false)
	}
	raw := s.Codec.Read(r)
	if raw == "" {
		return fail(sessionsdk.ErrNoToken, false)
	}

	out.Trail = append(out.Trail, StateVerify)
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		if !errors.Is(err, jwtx.ErrExpired) {
			return fail(sessionsdk.ErrInvalidToken, true)
		}

		out.Trail = append(out.Trail, StateDecodeUnverified)
		claims, err = jwtx.DecodeUnverifiedOnExpiryOnly(raw, err)
		if err != nil {
			return fail(sessionsdk.ErrMalformedToken, true)
		}
	}

	out.Trail = append(out.Trail, StateExtractUpstream)
	upstream := claims.Token
	if upstream == "" {
		return fail(sessionsdk.ErrInvalidTokenStructure, true)
	}

	out.Trail = append(out.Trail, StateRevalidateUpstream)
	verdict, err := s.Verifier.Verify(ctx, upstream)
	if err != nil {
		l.Error("upstream verification unavailable", "err", err)
		return fail(sessionsdk.ErrRefreshFailed, true)
	}
	if !verdict.Valid() {
		l.Info("upstream token rejected", "kind", verdict.Kind.String(), "reason", verdict.Reason)
		return fail(sessionsdk.ErrFirebaseTokenInvalid, true)
	}

	out.Trail = append(out.Trail, StateReissue)
	tok, err := s.Codec.Issue(ctx, w, upstream, verdict.Subject, claims.ID)
	if err != nil {
		if errors.Is(err, ErrServerConfiguration) {
			return fail(sessionsdk.ErrServerConfiguration, false)
		}
		l.Error("session reissue failed", "err", err)
		return fail(sessionsdk.ErrRefreshFailed, true)
	}

	out.Subject = verdict.Subject
	out.Token = tok
	l.Info("session refreshed", "sub", verdict.Subject, "jti", tok.Claims.ID, "replaces", claims.ID)
	return out
}

func (s *RefreshService) tryClear(w http.ResponseWriter) (cleared bool) {
	defer func() {
		if recover() != nil {
			cleared = false
		}
	}()
	s.Codec.Clear(w)
	return true
}
