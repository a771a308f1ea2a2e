package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoKey is returned when a signer or verifier is built without key material.
var ErrNoKey = errors.New("jwtx: missing signing key")

// HS256Signer signs session tokens with a server-held symmetric key.
type HS256Signer struct {
	key []byte
}

// NewHS256Signer creates a signer for the given HMAC key.
func NewHS256Signer(key []byte) (*HS256Signer, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	return &HS256Signer{key: key}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign turns the claims into a compact JWS.
func (s *HS256Signer) Sign(claims SessionClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}
