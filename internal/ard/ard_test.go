package ard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

type fakeSession struct {
	wallets []RawWallet
}

func (f fakeSession) Wallets(context.Context) ([]RawWallet, error) { return f.wallets, nil }

func TestAdapter_FetchCanteen(t *testing.T) {
	a := NewAdapter(nil)
	account := entities.Account{
		LocalID:  "ard-1",
		Service:  entities.ServiceARD,
		Instance: fakeSession{wallets: []RawWallet{{Name: "Cantine", BalanceCents: 1250}}},
	}

	balances, err := a.FetchCanteen(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "ard-1", balances[0].AccountLocalID)
	assert.InDelta(t, 12.5, balances[0].Amount, 0.001)
	assert.Equal(t, "EUR", balances[0].Currency)

	_, err = a.FetchTimetableForWeek(context.Background(), account, 1)
	assert.ErrorIs(t, err, services.ErrCapabilityUnsupported)
}

func TestAdapter_NoSession(t *testing.T) {
	a := NewAdapter(nil)
	_, err := a.FetchCanteen(context.Background(), entities.Account{Service: entities.ServiceARD})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = a.Reload(context.Background(), entities.Account{Service: entities.ServiceARD})
	assert.ErrorIs(t, err, services.ErrConnectorMissing)
}
