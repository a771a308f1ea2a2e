package service

import "github.com/certquest/sessiond/pkg/cryptox"

// DeriveSessionKey exposes the session key derivation to external tests.
func DeriveSessionKey(secret string) ([]byte, error) {
	return cryptox.DeriveKey(secret, sessionKeyInfo, cryptox.SessionKeySize)
}
