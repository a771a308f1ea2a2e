// Package identity wraps the upstream identity provider. Verification
// results are reported as a tagged Verdict rather than as provider-specific
// errors, so callers never string-match error codes.
package identity

import (
	"context"
	"strings"
)

// APIUserIDClaim is the custom claim carrying the internal user id.
const APIUserIDClaim = "api_user_id"

// FallbackIDPrefix marks placeholder internal ids that must be treated as
// absent.
const FallbackIDPrefix = "fb_"

// Kind classifies the outcome of verifying an upstream token.
type Kind int

const (
	KindInvalid Kind = iota
	KindValid
	KindExpired
	KindRevoked
)

func (k Kind) String() string {
	switch k {
	case KindValid:
		return "valid"
	case KindExpired:
		return "expired"
	case KindRevoked:
		return "revoked"
	default:
		return "invalid"
	}
}

// Verdict is the result of verifying an upstream identity token.
type Verdict struct {
	Kind    Kind
	Subject string         // only set when Kind == KindValid
	Claims  map[string]any // only set when Kind == KindValid
	Reason  string         // provider message for non-valid verdicts
}

// Valid reports whether the token can still be trusted.
func (v Verdict) Valid() bool { return v.Kind == KindValid && v.Subject != "" }

// Verifier validates upstream identity tokens. The error return is reserved
// for infrastructure faults (unreachable provider, bad configuration); a bad
// or expired token is a Verdict, not an error.
type Verifier interface {
	Verify(ctx context.Context, token string) (Verdict, error)
}

// ClaimsAdmin updates custom claims on the upstream identity.
type ClaimsAdmin interface {
	SetAPIUserID(ctx context.Context, subject, apiUserID string) error
}

// IsFallbackID reports whether id is a placeholder value.
func IsFallbackID(id string) bool {
	return strings.HasPrefix(id, FallbackIDPrefix)
}

// UsableID returns id unless it is empty or a placeholder.
func UsableID(id string) string {
	if id == "" || IsFallbackID(id) {
		return ""
	}
	return id
}

// APIUserIDFromClaims extracts a usable internal id from a claims map.
func APIUserIDFromClaims(claims map[string]any) string {
	v, ok := claims[APIUserIDClaim].(string)
	if !ok {
		return ""
	}
	return UsableID(v)
}
