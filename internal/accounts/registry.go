// Package accounts owns the list of connected accounts and the current
// account pointer. Switching accounts re-points every cache store before any
// refresh runs against the new account.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/crypto"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/handles"
	"github.com/mrlokans/schooldesk/internal/schoolyear"
	"github.com/mrlokans/schooldesk/internal/services"
	"github.com/mrlokans/schooldesk/internal/storage"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrNoCurrent       = errors.New("no current account")
	ErrInvalidProperty = errors.New("invalid account property")
)

// Property names an account field MutateProperty can change.
type Property string

const (
	PropertyInstance        Property = "instance"
	PropertyName            Property = "name"
	PropertyAuthentication  Property = "authentication"
	PropertyPersonalization Property = "personalization"
	PropertyLinkedAccounts  Property = "linked_external_local_ids"
	PropertySchoolYearStart Property = "school_year_start"
)

// Forgetter drops the refresh history of a removed account.
type Forgetter interface {
	ForgetAccount(accountLocalID string) error
}

type Config struct {
	Backend  storage.Backend
	Sealer   *crypto.Sealer
	Adapters *services.Registry
	Stores   *cache.Set
	Handles  *handles.Registry
	History  Forgetter
	// SchoolYearStartMonth is assumed for accounts whose provider does not
	// expose the first day of school.
	SchoolYearStartMonth time.Month
	Now                  func() time.Time
}

type Registry struct {
	backend    storage.Backend
	sealer     *crypto.Sealer
	adapters   *services.Registry
	stores     *cache.Set
	handles    *handles.Registry
	history    Forgetter
	validate   *validator.Validate
	startMonth time.Month
	now        func() time.Time

	mu       sync.RWMutex
	accounts []entities.Account
	current  string
}

func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		backend:    cfg.Backend,
		sealer:     cfg.Sealer,
		adapters:   cfg.Adapters,
		stores:     cfg.Stores,
		handles:    cfg.Handles,
		history:    cfg.History,
		validate:   newValidator(),
		startMonth: cfg.SchoolYearStartMonth,
		now:        cfg.Now,
	}
	if r.handles == nil {
		r.handles = handles.NewRegistry()
	}
	if r.startMonth == 0 {
		r.startMonth = schoolyear.DefaultStartMonth
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Load reads the persisted account list. Live instances start out empty.
func (r *Registry) Load(ctx context.Context) error {
	loaded, err := r.readAll(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = loaded
	if r.current != "" && r.indexLocked(r.current) < 0 {
		r.current = ""
	}
	log.Printf("[ACCOUNTS] Loaded %d accounts", len(loaded))
	return nil
}

// Create validates and appends a new account. A missing local id is
// generated; providers with per-school features are probed when the account
// arrives with a live instance.
func (r *Registry) Create(ctx context.Context, account entities.Account) (entities.Account, error) {
	if account.LocalID == "" {
		account.LocalID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = r.now()
	}
	if account.SchoolYearStart.IsZero() {
		account.SchoolYearStart = schoolyear.DefaultStart(r.now(), r.startMonth)
	}
	if err := r.validate.Struct(account); err != nil {
		return entities.Account{}, fmt.Errorf("invalid account: %w", err)
	}

	if capability.NeedsProbe(account.Service) && account.HasSession() {
		if err := r.probe(ctx, &account); err != nil {
			log.Printf("[ACCOUNTS] Probe for %s account %s failed: %v", account.Service, account.LocalID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(account.LocalID) >= 0 {
		return entities.Account{}, fmt.Errorf("%w: %s", ErrAccountExists, account.LocalID)
	}
	r.accounts = append(r.accounts, account)
	if err := r.persistLocked(ctx); err != nil {
		r.accounts = r.accounts[:len(r.accounts)-1]
		return entities.Account{}, err
	}

	log.Printf("[ACCOUNTS] Created %s account %s", account.Service, account.LocalID)
	return account, nil
}

func (r *Registry) probe(ctx context.Context, account *entities.Account) error {
	adapter, err := r.adapters.Lookup(account.Service)
	if err != nil {
		return err
	}
	prober, ok := adapter.(services.TabProber)
	if !ok {
		return fmt.Errorf("%s adapter cannot probe capabilities", account.Service)
	}
	tabs, err := capability.Probe(ctx, prober, *account)
	if err != nil {
		return err
	}
	account.Personalization.Tabs = tabs
	account.Personalization.TabsProbed = true
	return nil
}

// SwitchTo makes localID the current account. Every cache store is bound to
// it before the primary session is reloaded. A failed primary reload is
// returned; linked accounts are reloaded afterwards one at a time and their
// failures are only logged.
func (r *Registry) SwitchTo(ctx context.Context, localID string) error {
	r.mu.Lock()
	if r.indexLocked(localID) < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotFound, localID)
	}
	r.current = localID
	r.mu.Unlock()

	r.handles.Reset()

	g, gctx := errgroup.WithContext(ctx)
	for _, store := range r.stores.All() {
		g.Go(func() error {
			return store.Bind(gctx, localID)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to bind stores to %s: %w", localID, err)
	}

	if err := r.ensureSession(ctx, localID); err != nil {
		return err
	}

	current, _ := r.Get(localID)
	for _, linkedID := range current.LinkedExternalLocalIDs {
		if err := r.ensureSession(ctx, linkedID); err != nil {
			log.Printf("[ACCOUNTS] Reload of linked account %s failed: %v", linkedID, err)
		}
	}

	log.Printf("[ACCOUNTS] Switched to %s account %s", current.Service, localID)
	return nil
}

// ensureSession reloads the instance of localID when it has none and writes
// back the instance, any refreshed authentication and, for providers with
// per-school features, the probed tabs.
func (r *Registry) ensureSession(ctx context.Context, localID string) error {
	account, ok := r.Get(localID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, localID)
	}
	if account.HasSession() || !account.Service.RequiresSession() {
		return nil
	}

	adapter, err := r.adapters.Lookup(account.Service)
	if err != nil {
		return err
	}
	result, err := adapter.Reload(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to reload %s account %s: %w", account.Service, localID, err)
	}

	// Accounts created without a session are probed on their first reload.
	probed := false
	if capability.NeedsProbe(account.Service) && !account.Personalization.TabsProbed {
		live := account
		live.Instance = result.Instance
		if result.Authentication != nil {
			live.Authentication = result.Authentication
		}
		if err := r.probe(ctx, &live); err != nil {
			log.Printf("[ACCOUNTS] Probe for %s account %s failed: %v", account.Service, localID, err)
		} else {
			account.Personalization = live.Personalization
			probed = true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(localID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, localID)
	}
	r.accounts[i].Instance = result.Instance

	changed := false
	if probed {
		r.accounts[i].Personalization.Tabs = account.Personalization.Tabs
		r.accounts[i].Personalization.TabsProbed = true
		changed = true
	}
	if result.Authentication != nil {
		r.accounts[i].Authentication = result.Authentication
		changed = true
	}
	if !result.SchoolYearStart.IsZero() && !result.SchoolYearStart.Equal(r.accounts[i].SchoolYearStart) {
		r.accounts[i].SchoolYearStart = result.SchoolYearStart
		changed = true
	}
	if changed {
		return r.persistLocked(ctx)
	}
	return nil
}

// MutateProperty changes one field of the current account. The instance
// lives only in memory; every other property is persisted.
func (r *Registry) MutateProperty(ctx context.Context, prop Property, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(r.current)
	if i < 0 {
		return ErrNoCurrent
	}
	account := r.accounts[i]

	switch prop {
	case PropertyInstance:
		r.accounts[i].Instance = value
		return nil
	case PropertyName:
		v, ok := value.(string)
		if !ok {
			return invalidValue(prop, value)
		}
		account.Name = v
	case PropertyAuthentication:
		v, ok := value.(map[string]string)
		if !ok {
			return invalidValue(prop, value)
		}
		account.Authentication = v
	case PropertyPersonalization:
		v, ok := value.(entities.Personalization)
		if !ok {
			return invalidValue(prop, value)
		}
		account.Personalization = v
	case PropertyLinkedAccounts:
		v, ok := value.([]string)
		if !ok {
			return invalidValue(prop, value)
		}
		account.LinkedExternalLocalIDs = slices.Clone(v)
	case PropertySchoolYearStart:
		v, ok := value.(time.Time)
		if !ok {
			return invalidValue(prop, value)
		}
		account.SchoolYearStart = v
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProperty, prop)
	}

	if err := r.validate.Struct(account); err != nil {
		return fmt.Errorf("invalid %s: %w", prop, err)
	}

	previous := r.accounts[i]
	r.accounts[i] = account
	if err := r.persistLocked(ctx); err != nil {
		r.accounts[i] = previous
		return err
	}
	return nil
}

func invalidValue(prop Property, value any) error {
	return fmt.Errorf("%w: %s cannot be %T", ErrInvalidProperty, prop, value)
}

// Remove deletes an account, its cached data and its refresh history. When it
// was the current account the stores are left unbound.
func (r *Registry) Remove(ctx context.Context, localID string) error {
	r.mu.Lock()
	i := r.indexLocked(localID)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotFound, localID)
	}
	removed := r.accounts[i]
	r.accounts = slices.Delete(slices.Clone(r.accounts), i, i+1)
	for j := range r.accounts {
		linked := slices.Clone(r.accounts[j].LinkedExternalLocalIDs)
		r.accounts[j].LinkedExternalLocalIDs = slices.DeleteFunc(linked, func(id string) bool {
			return id == localID
		})
	}
	wasCurrent := r.current == localID
	if wasCurrent {
		r.current = ""
	}
	err := r.persistLocked(ctx)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.logoutAccount(ctx, removed)

	var errs []error
	for _, store := range r.stores.All() {
		if err := store.Purge(ctx, localID); err != nil {
			errs = append(errs, err)
		}
		if wasCurrent {
			store.Unbind()
		}
	}
	if r.history != nil {
		if err := r.history.ForgetAccount(localID); err != nil {
			errs = append(errs, err)
		}
	}

	log.Printf("[ACCOUNTS] Removed %s account %s", removed.Service, localID)
	return errors.Join(errs...)
}

// Logout ends the current account's provider session and clears the
// current pointer. The account itself stays registered.
func (r *Registry) Logout(ctx context.Context) error {
	current, ok := r.Current()
	if !ok {
		return ErrNoCurrent
	}

	r.logoutAccount(ctx, current)

	r.mu.Lock()
	if i := r.indexLocked(current.LocalID); i >= 0 {
		r.accounts[i].Instance = nil
	}
	r.current = ""
	r.mu.Unlock()

	r.handles.Reset()
	for _, store := range r.stores.All() {
		store.Unbind()
	}
	log.Printf("[ACCOUNTS] Logged out of %s account %s", current.Service, current.LocalID)
	return nil
}

// logoutAccount releases provider-side resources of a live session.
func (r *Registry) logoutAccount(ctx context.Context, account entities.Account) {
	if !account.HasSession() {
		return
	}
	adapter, err := r.adapters.Lookup(account.Service)
	if err != nil {
		return
	}
	if err := adapter.Logout(ctx, account); err != nil {
		log.Printf("[ACCOUNTS] Logout of %s account %s failed: %v", account.Service, account.LocalID, err)
	}
}

// Current returns the current account with its live instance.
func (r *Registry) Current() (entities.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(r.current)
	if i < 0 {
		return entities.Account{}, false
	}
	return r.accounts[i], true
}

// Accounts returns every registered account in creation order.
func (r *Registry) Accounts() []entities.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.accounts)
}

func (r *Registry) Get(localID string) (entities.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(localID)
	if i < 0 {
		return entities.Account{}, false
	}
	return r.accounts[i], true
}

// Linked returns the registered accounts linked to account.
func (r *Registry) Linked(account entities.Account) []entities.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.Account
	for _, id := range account.LinkedExternalLocalIDs {
		if i := r.indexLocked(id); i >= 0 {
			out = append(out, r.accounts[i])
		}
	}
	return out
}

func (r *Registry) indexLocked(localID string) int {
	if localID == "" {
		return -1
	}
	return slices.IndexFunc(r.accounts, func(a entities.Account) bool { return a.LocalID == localID })
}
