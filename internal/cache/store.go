// Package cache holds the per-domain stores that keep the latest normalized
// data of the current account, keyed by period name or week number.
//
// Every store persists to "<accountLocalID>-<domain>-storage" through a
// storage.Backend. The account registry re-points all stores with Bind when
// the current account changes; in-memory state is reset before rehydration so
// nothing from the previous account survives.
//
// Keys never fetched stay absent. Readers get (value, ok) so "not loaded yet"
// and "loaded and empty" stay distinguishable.
//
// Writes come in two flavours:
//   - ticketed: the dispatcher calls Begin(key) before the provider call and
//     passes the ticket to the write. A write holding a ticket older than one
//     already applied for the key is dropped with ErrStaleTicket, and a
//     ticket issued for another account is dropped with ErrAccountSwitched.
//   - direct: a zero Ticket writes unconditionally (last write wins).
package cache

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

var (
	ErrNotBound          = errors.New("cache store is not bound to an account")
	ErrStaleTicket       = errors.New("a newer write for this key was already applied")
	ErrAccountSwitched   = errors.New("write targets an account that is no longer current")
	ErrTicketKeyMismatch = errors.New("ticket was issued for another key")
)

// Namespace returns the persistence key of a domain store for an account.
func Namespace(accountLocalID string, domain entities.Domain) string {
	return fmt.Sprintf("%s-%s-storage", accountLocalID, domain)
}

// Ticket orders concurrent writes to one key. The zero Ticket is a direct
// write.
type Ticket struct {
	accountID string
	key       string
	seq       uint64
}

// Direct is the ticket for unconditional writes.
var Direct = Ticket{}

// IsDirect reports whether t is the zero ticket.
func (t Ticket) IsDirect() bool {
	return t.seq == 0
}

// Key returns the cache key the ticket was issued for.
func (t Ticket) Key() string {
	return t.key
}

type envelope[S any] struct {
	State   S                    `json:"state"`
	Updated map[string]time.Time `json:"updated"`
}

// State is implemented by every domain state. clone copies the maps a write
// may replace entries of; slices are never modified in place.
type State[S any] interface {
	clone() S
}

// Store is the generic persisted state holder behind every domain store.
type Store[S State[S]] struct {
	domain   entities.Domain
	backend  storage.Backend
	newState func() S
	now      func() time.Time

	mu        sync.RWMutex
	accountID string
	state     S
	updated   map[string]time.Time
	applied   map[string]uint64
	seq       uint64
}

func newStore[S State[S]](domain entities.Domain, backend storage.Backend, newState func() S) *Store[S] {
	return &Store[S]{
		domain:   domain,
		backend:  backend,
		newState: newState,
		now:      time.Now,
		state:    newState(),
		updated:  make(map[string]time.Time),
		applied:  make(map[string]uint64),
	}
}

func (s *Store[S]) Domain() entities.Domain {
	return s.domain
}

// AccountID returns the account the store is bound to, or "".
func (s *Store[S]) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

// Bind re-points the store to accountID and rehydrates it from the backend.
// The previous state is dropped first, even when loading fails.
func (s *Store[S]) Bind(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked(accountID)

	var env envelope[S]
	env.State = s.newState()
	found, err := storage.GetJSON(ctx, s.backend, Namespace(accountID, s.domain), &env)
	if err != nil {
		return fmt.Errorf("rehydrate %s store: %w", s.domain, err)
	}
	if !found {
		return nil
	}

	s.state = env.State
	if env.Updated != nil {
		s.updated = env.Updated
	}
	return nil
}

// Unbind clears the in-memory state without touching persisted data.
func (s *Store[S]) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked("")
}

// Purge deletes the persisted namespace of accountID, and the in-memory state
// too when the store is bound to it.
func (s *Store[S]) Purge(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, Namespace(accountID, s.domain)); err != nil {
		return fmt.Errorf("purge %s store: %w", s.domain, err)
	}
	if s.accountID == accountID {
		s.resetLocked("")
	}
	return nil
}

// Begin issues a ticket for a write to key that will happen later.
func (s *Store[S]) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Ticket{accountID: s.accountID, key: key, seq: s.seq}
}

// LastUpdated returns when key was last written.
func (s *Store[S]) LastUpdated(key string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.updated[key]
	return t, ok
}

func (s *Store[S]) resetLocked(accountID string) {
	s.accountID = accountID
	s.state = s.newState()
	s.updated = make(map[string]time.Time)
	s.applied = make(map[string]uint64)
}

// read runs fn with the current state under the read lock.
func (s *Store[S]) read(fn func(state *S)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// write applies mutate to a copy of the state and persists the whole
// namespace. The copy replaces the in-memory state only once persisted, so a
// failed write leaves the store as it was. mutate returns false to leave the
// key untouched.
func (s *Store[S]) write(ctx context.Context, t Ticket, key string, mutate func(state *S) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountID == "" {
		return ErrNotBound
	}
	if !t.IsDirect() {
		if t.key != key {
			return fmt.Errorf("%w: %q used on %q", ErrTicketKeyMismatch, t.key, key)
		}
		if t.accountID != s.accountID {
			return ErrAccountSwitched
		}
		if t.seq < s.applied[key] {
			return ErrStaleTicket
		}
	}

	next := s.state.clone()
	if !mutate(&next) {
		return nil
	}
	updated := maps.Clone(s.updated)
	updated[key] = s.now()

	env := envelope[S]{State: next, Updated: updated}
	if err := storage.SetJSON(ctx, s.backend, Namespace(s.accountID, s.domain), env); err != nil {
		return err
	}

	// Direct writes take a fresh sequence so older in-flight tickets lose.
	seq := t.seq
	if t.IsDirect() {
		s.seq++
		seq = s.seq
	}
	s.state = next
	s.updated = updated
	s.applied[key] = seq
	return nil
}

// IsSuperseded reports whether err means the write lost to a newer one.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrStaleTicket) || errors.Is(err, ErrAccountSwitched)
}
