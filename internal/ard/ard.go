// Package ard adapts the ARD canteen payment service.
package ard

import (
	"context"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// Session is a logged-in ARD client.
type Session interface {
	Wallets(ctx context.Context) ([]RawWallet, error)
}

type Connector interface {
	Connect(ctx context.Context, authentication map[string]string) (Session, map[string]string, error)
}

// RawWallet amounts are in cents.
type RawWallet struct {
	Name         string
	BalanceCents int64
	Currency     string
}

type Adapter struct {
	services.Unsupported

	connector Connector
}

func NewAdapter(connector Connector) *Adapter {
	return &Adapter{connector: connector}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServiceARD
}

func (a *Adapter) Reload(ctx context.Context, account entities.Account) (services.ReloadResult, error) {
	if a.connector == nil {
		return services.ReloadResult{}, services.ErrConnectorMissing
	}
	session, auth, err := a.connector.Connect(ctx, account.Authentication)
	if err != nil {
		return services.ReloadResult{}, err
	}
	return services.ReloadResult{Instance: session, Authentication: auth}, nil
}

func (a *Adapter) FetchCanteen(ctx context.Context, account entities.Account) ([]entities.CanteenBalance, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	wallets, err := session.Wallets(ctx)
	if err != nil {
		return nil, err
	}
	balances := make([]entities.CanteenBalance, 0, len(wallets))
	for _, w := range wallets {
		currency := w.Currency
		if currency == "" {
			currency = "EUR"
		}
		balances = append(balances, entities.CanteenBalance{
			AccountLocalID: account.LocalID,
			Label:          w.Name,
			Amount:         float64(w.BalanceCents) / 100,
			Currency:       currency,
		})
	}
	return balances, nil
}

var _ services.Adapter = (*Adapter)(nil)
