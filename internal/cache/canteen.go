package cache

import (
	"context"
	"maps"
	"slices"
	"sort"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

type CanteenState struct {
	// Balances is keyed by the local id of the account that reported them,
	// usually a linked canteen account.
	Balances map[string][]entities.CanteenBalance `json:"balances"`
}

func (st CanteenState) clone() CanteenState {
	st.Balances = maps.Clone(st.Balances)
	return st
}

type CanteenStore struct {
	*Store[CanteenState]
}

func NewCanteenStore(backend storage.Backend) *CanteenStore {
	return &CanteenStore{newStore(entities.DomainCanteen, backend, func() CanteenState {
		return CanteenState{Balances: make(map[string][]entities.CanteenBalance)}
	})}
}

func (s *CanteenStore) UpdateBalances(ctx context.Context, t Ticket, accountLocalID string, balances []entities.CanteenBalance) error {
	return s.write(ctx, t, CanteenKey(accountLocalID), func(st *CanteenState) bool {
		st.Balances[accountLocalID] = slices.Clone(nonNil(balances))
		return true
	})
}

func (s *CanteenStore) Balances(accountLocalID string) ([]entities.CanteenBalance, bool) {
	var (
		out []entities.CanteenBalance
		ok  bool
	)
	s.read(func(st *CanteenState) {
		var list []entities.CanteenBalance
		list, ok = st.Balances[accountLocalID]
		out = slices.Clone(list)
	})
	return out, ok
}

// All flattens every cached balance, ordered by account then label.
func (s *CanteenStore) All() []entities.CanteenBalance {
	var out []entities.CanteenBalance
	s.read(func(st *CanteenState) {
		for _, list := range st.Balances {
			out = append(out, list...)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AccountLocalID != out[j].AccountLocalID {
			return out[i].AccountLocalID < out[j].AccountLocalID
		}
		return out[i].Label < out[j].Label
	})
	return out
}
