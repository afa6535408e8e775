// Package dispatch routes refresh requests for the current account to the
// matching provider adapter and writes the results into the cache stores.
//
// Every operation runs the same sequence: capability gate, adapter call,
// cache write. Errors never escape: they are logged, recorded in the refresh
// event log and reported as an Outcome, and the store keeps its previous
// value.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

type Outcome string

const (
	Updated    Outcome = "updated"
	Skipped    Outcome = "skipped"
	Failed     Outcome = "failed"
	Superseded Outcome = "superseded"
)

// Recorder stores one refresh event per dispatch.
type Recorder interface {
	Record(event entities.RefreshEvent)
}

// PayloadDumper keeps upstream values a decoder refused.
type PayloadDumper interface {
	DumpPayload(dump audit.PayloadDump)
}

type Config struct {
	Gate     *capability.Gate
	Adapters *services.Registry
	Stores   *cache.Set
	Recorder Recorder
	Dumper   PayloadDumper
	Now      func() time.Time
}

type Dispatcher struct {
	gate     *capability.Gate
	adapters *services.Registry
	stores   *cache.Set
	recorder Recorder
	dumper   PayloadDumper
	now      func() time.Time
}

func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		gate:     cfg.Gate,
		adapters: cfg.Adapters,
		stores:   cfg.Stores,
		recorder: cfg.Recorder,
		dumper:   cfg.Dumper,
		now:      cfg.Now,
	}
	if d.gate == nil {
		d.gate = capability.NewGate()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// SelectDefaultPeriod picks the period containing now, else the first one.
func SelectDefaultPeriod(periods []entities.Period, now time.Time) string {
	return services.DefaultPeriod(periods, now)
}

// ticketer is the part of a store a dispatch needs before the adapter call.
type ticketer interface {
	AccountID() string
	Begin(key string) cache.Ticket
}

// job describes one gated fetch-and-store.
type job struct {
	account entities.Account
	// owner is the account the store must be bound to. It differs from
	// account only for linked canteen accounts.
	owner  string
	domain entities.Domain
	key    string
	store  ticketer
	run    func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error
}

func (d *Dispatcher) dispatch(ctx context.Context, j job) Outcome {
	start := d.now()
	if j.owner == "" {
		j.owner = j.account.LocalID
	}

	if !d.gate.IsSupported(j.account, j.domain) {
		log.Printf("[DISPATCH] %s not supported for %s account %s, skipping", j.domain, j.account.Service, j.account.LocalID)
		d.record(j, Skipped, nil, start)
		return Skipped
	}

	if bound := j.store.AccountID(); bound != j.owner {
		err := cache.ErrNotBound
		if bound != "" {
			err = fmt.Errorf("%w: stores are bound to %s", cache.ErrAccountSwitched, bound)
		}
		return d.finish(j, err, start)
	}

	adapter, err := d.adapters.Lookup(j.account.Service)
	if err != nil {
		return d.finish(j, err, start)
	}

	ticket := j.store.Begin(j.key)
	return d.finish(j, j.run(ctx, adapter, ticket), start)
}

func (d *Dispatcher) finish(j job, err error, start time.Time) Outcome {
	switch {
	case err == nil:
		d.record(j, Updated, nil, start)
		return Updated
	case cache.IsSuperseded(err):
		log.Printf("[DISPATCH] %s %s for %s account %s superseded: %v", j.domain, j.key, j.account.Service, j.account.LocalID, err)
		d.record(j, Superseded, err, start)
		return Superseded
	}

	log.Printf("[DISPATCH] %s %s refresh failed for %s account %s: %v", j.domain, j.key, j.account.Service, j.account.LocalID, err)

	var decodeErr *services.DecodeError
	if errors.As(err, &decodeErr) && d.dumper != nil {
		d.dumper.DumpPayload(audit.PayloadDump{
			Service: decodeErr.Service,
			Domain:  j.domain,
			Field:   decodeErr.Field,
			Value:   decodeErr.Value,
		})
	}

	d.record(j, Failed, err, start)
	return Failed
}

func (d *Dispatcher) record(j job, outcome Outcome, err error, start time.Time) {
	if d.recorder == nil {
		return
	}
	event := entities.RefreshEvent{
		AccountLocalID: j.account.LocalID,
		Service:        j.account.Service,
		Domain:         j.domain,
		Key:            j.key,
		Status:         entities.RefreshStatus(outcome),
		DurationMs:     d.now().Sub(start).Milliseconds(),
		CreatedAt:      start,
	}
	if err != nil {
		event.ErrorMsg = err.Error()
	}
	d.recorder.Record(event)
}
