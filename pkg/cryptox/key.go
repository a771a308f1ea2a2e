package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SessionKeySize is the HMAC key length handed to the HS256 signer.
const SessionKeySize = 32

// ErrEmptySecret is returned when no secret material was configured.
var ErrEmptySecret = errors.New("cryptox: empty secret")

// DeriveKey expands an operator supplied secret into a fixed-size key using
// HKDF-SHA256. The info label separates keys derived from the same secret
// for different purposes.
func DeriveKey(secret, info string, size int) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if size <= 0 {
		return nil, fmt.Errorf("cryptox: key size must be positive, got %d", size)
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	key := make([]byte, size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: derive key: %w", err)
	}
	return key, nil
}
