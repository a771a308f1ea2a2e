package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotExpired is returned by DecodeUnverifiedOnExpiryOnly when the caller
// hands it a verification failure other than expiry.
var ErrNotExpired = errors.New("jwtx: unverified decode is only permitted for expired tokens")

// DecodeUnverifiedOnExpiryOnly reads the payload of a session token without
// checking its signature. It is only valid after Verify failed with
// ErrExpired, which means the signature already checked out; for any other
// verification failure it refuses with ErrNotExpired.
func DecodeUnverifiedOnExpiryOnly(tokenStr string, verifyErr error) (*SessionClaims, error) {
	if !errors.Is(verifyErr, ErrExpired) {
		return nil, ErrNotExpired
	}

	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding: %w", ErrMalformed, err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload json: %w", ErrMalformed, err)
	}

	return &claims, nil
}
