package domain

import "time"

// IssuedSession is a ledger row for one minted session token.
type IssuedSession struct {
	JTI     string
	Subject string

	// TokenFingerprint is the base64url SHA-256 of the signed session token.
	TokenFingerprint string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// ReplacesJTI is the jti of the token this one was refreshed from, empty
	// for sign-in issuance or when the previous token was a legacy token.
	ReplacesJTI string
}
