// Package capability decides whether an account's provider serves a domain.
package capability

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

var (
	schoolDomains = []entities.Domain{
		entities.DomainGrades,
		entities.DomainHomework,
		entities.DomainTimetable,
		entities.DomainAttendance,
		entities.DomainNews,
		entities.DomainChats,
	}

	staticTable = map[entities.Service][]entities.Domain{
		entities.ServicePronote:      schoolDomains,
		entities.ServiceEcoleDirecte: schoolDomains,
		entities.ServiceUPHF:         {entities.DomainTimetable},
		entities.ServiceARD:          {entities.DomainCanteen},
		entities.ServiceTurboself:    {entities.DomainCanteen},
		entities.ServiceLocal:        {entities.DomainTimetable, entities.DomainHomework},
	}

	// Services whose domains come from the per-account probe.
	dynamicServices = map[entities.Service]bool{
		entities.ServiceSkolengo: true,
	}
)

// Gate answers IsSupported from a static table, or from the probed tabs for
// providers whose features vary per school.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// IsSupported reports whether domain can be fetched for account. A dynamic
// provider that was never probed supports nothing.
func (g *Gate) IsSupported(account entities.Account, domain entities.Domain) bool {
	if dynamicServices[account.Service] {
		if !account.Personalization.TabsProbed {
			return false
		}
		return account.Personalization.HasTab(domain)
	}
	for _, d := range staticTable[account.Service] {
		if d == domain {
			return true
		}
	}
	return false
}

// Supported lists the domains IsSupported accepts, in declaration order.
func (g *Gate) Supported(account entities.Account) []entities.Domain {
	var out []entities.Domain
	for _, d := range entities.AllDomains() {
		if g.IsSupported(account, d) {
			out = append(out, d)
		}
	}
	return out
}

// NeedsProbe reports whether the service's capabilities come from a probe.
func NeedsProbe(service entities.Service) bool {
	return dynamicServices[service]
}

// Probe runs the prober's permission checks concurrently. A failing check
// marks its domain unsupported and never fails the probe as a whole.
func Probe(ctx context.Context, prober services.TabProber, account entities.Account) ([]entities.Domain, error) {
	checks, err := prober.PermissionChecks(account)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		supported = make(map[entities.Domain]bool, len(checks))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, check := range checks {
		g.Go(func() error {
			if err := check.Check(gctx); err != nil {
				log.Printf("[CAPABILITY] %s probe for %s account %s failed: %v", check.Domain, account.Service, account.LocalID, err)
				return nil
			}
			mu.Lock()
			supported[check.Domain] = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	tabs := make([]entities.Domain, 0, len(supported))
	for _, d := range entities.AllDomains() {
		if supported[d] {
			tabs = append(tabs, d)
		}
	}
	return tabs, nil
}
