package entrypoint

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/ard"
	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/config"
	"github.com/mrlokans/schooldesk/internal/crypto"
	"github.com/mrlokans/schooldesk/internal/database"
	auditrepo "github.com/mrlokans/schooldesk/internal/database/audit"
	"github.com/mrlokans/schooldesk/internal/database/entries"
	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/ecoledirecte"
	"github.com/mrlokans/schooldesk/internal/handles"
	"github.com/mrlokans/schooldesk/internal/ical"
	"github.com/mrlokans/schooldesk/internal/localaccount"
	"github.com/mrlokans/schooldesk/internal/pronote"
	"github.com/mrlokans/schooldesk/internal/refresh"
	"github.com/mrlokans/schooldesk/internal/services"
	"github.com/mrlokans/schooldesk/internal/settingsstore"
	"github.com/mrlokans/schooldesk/internal/skolengo"
	"github.com/mrlokans/schooldesk/internal/storage"
	"github.com/mrlokans/schooldesk/internal/storage/redis"
	"github.com/mrlokans/schooldesk/internal/turboself"
	"github.com/mrlokans/schooldesk/internal/uphf"
)

// Connectors are the provider SDK logins. A nil connector leaves its
// provider registered but unable to reload sessions.
type Connectors struct {
	Pronote      pronote.Connector
	EcoleDirecte ecoledirecte.Connector
	Skolengo     skolengo.Connector
	UPHF         uphf.Connector
	ARD          ard.Connector
	Turboself    turboself.Connector
}

// App is the wired core shared by the server and the CLI commands.
type App struct {
	Database  *database.Database
	Backend   storage.Backend
	Accounts  *accounts.Registry
	Stores    *cache.Set
	Gate      *capability.Gate
	History   *audit.Service
	Refresher *refresh.Service
	Settings  *settingsstore.SettingsStore

	closers []io.Closer
}

// NewApp opens the database and the storage backend and wires the account
// registry, dispatcher and calendar importer on top of them.
func NewApp(ctx context.Context, cfg *config.Config, connectors Connectors) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{Database: db}
	app.closers = append(app.closers, db)

	backend, err := openBackend(ctx, cfg, db)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Backend = backend
	if c, ok := backend.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	key, err := crypto.LoadOrCreateMasterKey(cfg.Security.EncryptionKey, cfg.Security.KeyFilePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create sealer: %w", err)
	}

	h := handles.NewRegistry()
	adapters := services.NewRegistry(
		pronote.NewAdapter(connectors.Pronote, h),
		ecoledirecte.NewAdapter(connectors.EcoleDirecte),
		skolengo.NewAdapter(connectors.Skolengo),
		uphf.NewAdapter(connectors.UPHF),
		ard.NewAdapter(connectors.ARD),
		turboself.NewAdapter(connectors.Turboself),
		localaccount.NewAdapter(),
	)
	if err := adapters.Exhaustive(); err != nil {
		app.Close()
		return nil, err
	}

	app.Settings = settingsstore.New(backend, cfg.Refresh)
	app.Stores = cache.NewSet(backend)
	app.Gate = capability.NewGate()
	app.History = audit.NewService(auditrepo.NewRepository(db.DB))

	app.Accounts = accounts.NewRegistry(accounts.Config{
		Backend:              backend,
		Sealer:               sealer,
		Adapters:             adapters,
		Stores:               app.Stores,
		Handles:              h,
		History:              app.History,
		SchoolYearStartMonth: cfg.SchoolYear.DefaultStartMonth,
	})
	if err := app.Accounts.Load(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	dispatcher := dispatch.New(dispatch.Config{
		Gate:     app.Gate,
		Adapters: adapters,
		Stores:   app.Stores,
		Recorder: app.History,
		Dumper:   audit.NewAuditor(cfg.Audit.Dir),
	})
	app.Refresher = refresh.NewService(refresh.Config{
		Accounts:   app.Accounts,
		Dispatcher: dispatcher,
		Importer:   ical.NewImporter(ical.NewFetcher(), app.Stores.Timetable),
	})

	return app, nil
}

func openBackend(ctx context.Context, cfg *config.Config, db *database.Database) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		backend, err := redis.Dial(dialCtx, cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Storage.RedisAddr, err)
		}
		log.Printf("Storage backend: redis (%s, db %d)", cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		return backend, nil
	case config.StorageMemory:
		log.Printf("Storage backend: memory (cache and accounts are lost on exit)")
		return storage.NewMemory(), nil
	default:
		log.Printf("Storage backend: sqlite (%s)", cfg.Database.Path)
		return entries.NewRepository(db.DB), nil
	}
}

// Activate makes localID current. With an empty localID the account that was
// current last is restored, or the first known account. A failed session
// reload is logged; the account stays current.
func (a *App) Activate(ctx context.Context, localID string) error {
	if localID == "" {
		localID = a.Settings.CurrentAccount(ctx)
		if _, ok := a.Accounts.Get(localID); !ok {
			all := a.Accounts.Accounts()
			if len(all) == 0 {
				log.Printf("[ACCOUNTS] No accounts configured")
				return nil
			}
			localID = all[0].LocalID
		}
	}

	err := a.Accounts.SwitchTo(ctx, localID)
	if current, ok := a.Accounts.Current(); !ok || current.LocalID != localID {
		return err
	}
	if err != nil {
		log.Printf("[ACCOUNTS] Switched to %s with errors: %v", localID, err)
	}
	if err := a.Settings.SetCurrentAccount(ctx, localID); err != nil {
		log.Printf("[SETTINGS] Failed to remember current account: %v", err)
	}
	return nil
}

// Close flushes pending refresh events and releases the storage backend and
// the database.
func (a *App) Close() {
	if a.History != nil {
		a.History.Flush()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("Error closing resource: %v", err)
		}
	}
	a.closers = nil
}
