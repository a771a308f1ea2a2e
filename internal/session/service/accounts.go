package service

import (
	"context"
	"errors"

	"github.com/certquest/sessiond/internal/session/domain"
	"github.com/certquest/sessiond/internal/session/store"
	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/idx"
	"github.com/certquest/sessiond/pkg/slogx"
)

var (
	ErrInvalidAPIUserID = errors.New("invalid_api_user_id")
	ErrForbidden        = errors.New("forbidden")
)

// AccountService links upstream identities to internal user ids.
type AccountService struct {
	Store  store.Store
	Claims identity.ClaimsAdmin
}

// Login returns the account for subject, creating it on first login.
func (s *AccountService) Login(ctx context.Context, subject string) (domain.Account, error) {
	l := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	acc, err := accounts.GetAccountByFirebaseUID(ctx, subject)
	switch {
	case err == nil:
		if err := accounts.TouchAccount(ctx, acc.APIUserID); err != nil {
			l.Warn("account touch failed", "api_user_id", acc.APIUserID, "err", err)
		}
		return acc, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, err
	}

	acc = domain.Account{
		APIUserID:   idx.New().String(),
		FirebaseUID: subject,
	}
	if err := accounts.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent first login.
			return accounts.GetAccountByFirebaseUID(ctx, subject)
		}
		return domain.Account{}, err
	}

	l.Info("account created", "sub", subject, "api_user_id", acc.APIUserID)
	return s.Store.Accounts().GetAccountByFirebaseUID(ctx, subject)
}

// SetClaims writes apiUserID into the custom claims of subject. Only the
// account's own subject may do so.
func (s *AccountService) SetClaims(ctx context.Context, subject, apiUserID string) error {
	if identity.UsableID(apiUserID) == "" {
		return ErrInvalidAPIUserID
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, apiUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if acc.FirebaseUID != subject {
		slogx.FromContext(ctx).Warn("set-claims for foreign account refused", "sub", subject, "api_user_id", apiUserID)
		return ErrForbidden
	}

	return s.Claims.SetAPIUserID(ctx, subject, apiUserID)
}
