package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type dbtx interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

const (
	createAccount = `
INSERT INTO accounts (api_user_id, firebase_uid, created_at, updated_at)
VALUES (?, ?, ?, ?)`

	getAccountByFirebaseUID = `
SELECT api_user_id, firebase_uid, created_at, updated_at
FROM accounts WHERE firebase_uid = ?`

	getAccountByID = `
SELECT api_user_id, firebase_uid, created_at, updated_at
FROM accounts WHERE api_user_id = ?`

	touchAccount = `
UPDATE accounts SET updated_at = ? WHERE api_user_id = ?`

	createIssuedSession = `
INSERT INTO issued_sessions (jti, subject, token_fingerprint, issued_at, expires_at, replaces_jti)
VALUES (?, ?, ?, ?, ?, ?)`

	getIssuedSession = `
SELECT jti, subject, token_fingerprint, issued_at, expires_at, replaces_jti
FROM issued_sessions WHERE jti = ?`

	listIssuedSessionsBySubject = `
SELECT jti, subject, token_fingerprint, issued_at, expires_at, replaces_jti
FROM issued_sessions WHERE subject = ?
ORDER BY issued_at DESC, jti DESC`

	deleteIssuedSessionsExpiredBefore = `
DELETE FROM issued_sessions WHERE expires_at < ?`
)

type accountRow struct {
	APIUserID   string
	FirebaseUID string
	CreatedAt   int64
	UpdatedAt   int64
}

type issuedSessionRow struct {
	JTI              string
	Subject          string
	TokenFingerprint string
	IssuedAt         int64
	ExpiresAt        int64
	ReplacesJTI      sql.NullString
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (accountRow, error) {
	var row accountRow
	err := r.Scan(&row.APIUserID, &row.FirebaseUID, &row.CreatedAt, &row.UpdatedAt)
	return row, err
}

func scanIssuedSession(r rowScanner) (issuedSessionRow, error) {
	var row issuedSessionRow
	err := r.Scan(&row.JTI, &row.Subject, &row.TokenFingerprint, &row.IssuedAt, &row.ExpiresAt, &row.ReplacesJTI)
	return row, err
}
