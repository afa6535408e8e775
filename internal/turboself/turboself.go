// Package turboself adapts the Turboself canteen service.
package turboself

import (
	"context"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// Session is a logged-in Turboself client.
type Session interface {
	Host(ctx context.Context) (RawHost, error)
}

type Connector interface {
	Connect(ctx context.Context, authentication map[string]string) (Session, map[string]string, error)
}

// RawHost is the Turboself account holder. RemainingMeals is nil for
// establishments billing by amount only.
type RawHost struct {
	FirstName      string
	Balance        float64
	RemainingMeals *int
}

type Adapter struct {
	services.Unsupported

	connector Connector
}

func NewAdapter(connector Connector) *Adapter {
	return &Adapter{connector: connector}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServiceTurboself
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
	host, err := session.Host(ctx)
	if err != nil {
		return nil, err
	}
	return []entities.CanteenBalance{{
		AccountLocalID: account.LocalID,
		Label:          "Turboself",
		Amount:         host.Balance,
		Currency:       "EUR",
		RemainingMeals: host.RemainingMeals,
	}}, nil
}

var _ services.Adapter = (*Adapter)(nil)
