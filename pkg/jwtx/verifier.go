package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates session tokens produced by HS256Signer.
type HS256Verifier struct {
	key []byte
	now func() time.Time
}

// NewHS256Verifier creates a verifier for the given HMAC key.
func NewHS256Verifier(key []byte) (*HS256Verifier, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	return &HS256Verifier{key: key, now: time.Now}, nil
}

// WithClock returns a copy of the verifier evaluating exp against now.
func (v *HS256Verifier) WithClock(now func() time.Time) *HS256Verifier {
	return &HS256Verifier{key: v.key, now: now}
}

// Verify checks the signature and the time-based claims. The returned error
// always wraps exactly one of ErrMalformed, ErrInvalidSig, ErrExpired or
// ErrInvalidClaim so callers can branch with errors.Is.
//
// The signature is checked before exp, so ErrExpired implies the token was
// produced with our key.
func (v *HS256Verifier) Verify(tokenStr string) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
}
