package store

import (
	"context"
	"errors"
	"time"

	"github.com/certquest/sessiond/internal/session/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories so that a Tx-scoped Store offers exactly the
// same surface and nested transactions cannot be started by accident.
type Store interface {
	Accounts() Accounts
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByFirebaseUID returns the account linked to an upstream subject.
	GetAccountByFirebaseUID(ctx context.Context, uid string) (domain.Account, error)

	// GetAccountByID returns an account by its internal user id.
	GetAccountByID(ctx context.Context, apiUserID string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// It returns ErrAlreadyExists when the subject is already linked.
	CreateAccount(ctx context.Context, a domain.Account) error

	// TouchAccount bumps updated_at.
	TouchAccount(ctx context.Context, apiUserID string) error
}

type Sessions interface {
	// RecordIssuedSession appends a ledger row for a newly minted token.
	RecordIssuedSession(ctx context.Context, s domain.IssuedSession) error

	// GetIssuedSession returns a ledger row by jti.
	GetIssuedSession(ctx context.Context, jti string) (domain.IssuedSession, error)

	// ListSessionsBySubject returns the subject's ledger rows, newest first.
	ListSessionsBySubject(ctx context.Context, subject string) ([]domain.IssuedSession, error)

	// DeleteSessionsExpiredBefore removes rows whose expiry is before cutoff
	// and returns how many were removed.
	DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
