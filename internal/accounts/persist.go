package accounts

import (
	"context"
	"fmt"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

// storedAccount is the persisted form of an account. With a sealer the
// credential bag is kept encrypted in SealedAuthentication.
type storedAccount struct {
	entities.Account
	SealedAuthentication string `json:"sealed_authentication,omitempty"`
}

func (r *Registry) persistLocked(ctx context.Context) error {
	stored := make([]storedAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		s := storedAccount{Account: a.Persistable()}
		if r.sealer != nil {
			sealed, err := r.sealer.Seal(a.LocalID, a.Authentication)
			if err != nil {
				return fmt.Errorf("failed to seal authentication of %s: %w", a.LocalID, err)
			}
			s.SealedAuthentication = sealed
			s.Authentication = nil
		}
		stored = append(stored, s)
	}
	if err := storage.SetJSON(ctx, r.backend, entities.AccountsStorageKey, stored); err != nil {
		return fmt.Errorf("failed to persist accounts: %w", err)
	}
	return nil
}

func (r *Registry) readAll(ctx context.Context) ([]entities.Account, error) {
	var stored []storedAccount
	if _, err := storage.GetJSON(ctx, r.backend, entities.AccountsStorageKey, &stored); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	accounts := make([]entities.Account, 0, len(stored))
	for _, s := range stored {
		a := s.Account
		if s.SealedAuthentication != "" {
			if r.sealer == nil {
				return nil, fmt.Errorf("account %s has sealed authentication but no key is configured", a.LocalID)
			}
			bag, err := r.sealer.Open(a.LocalID, s.SealedAuthentication)
			if err != nil {
				return nil, fmt.Errorf("failed to open authentication of %s: %w", a.LocalID, err)
			}
			a.Authentication = bag
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}
