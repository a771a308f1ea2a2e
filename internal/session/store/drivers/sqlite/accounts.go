package sqlite

import (
	"context"
	"time"

	"github.com/certquest/sessiond/internal/session/domain"
	"github.com/certquest/sessiond/internal/session/store"
)

type accountsRepo struct {
	q   *queries
	now func() time.Time
}

func (r *accountsRepo) GetAccountByFirebaseUID(ctx context.Context, uid string) (domain.Account, error) {
	row, err := scanAccount(r.q.db.QueryRowContext(ctx, getAccountByFirebaseUID, uid))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, apiUserID string) (domain.Account, error) {
	row, err := scanAccount(r.q.db.QueryRowContext(ctx, getAccountByID, apiUserID))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := r.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := r.q.db.ExecContext(ctx, createAccount,
		a.APIUserID, a.FirebaseUID, toMillis(a.CreatedAt), toMillis(a.UpdatedAt))
	return mapConflict(err)
}

func (r *accountsRepo) TouchAccount(ctx context.Context, apiUserID string) error {
	res, err := r.q.db.ExecContext(ctx, touchAccount, toMillis(r.now()), apiUserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
