// Package cli holds the one-shot commands of the schooldesk binary.
package cli

import (
	"context"
	"flag"

	"github.com/mrlokans/schooldesk/internal/config"
	"github.com/mrlokans/schooldesk/internal/entrypoint"
)

// appFlags are the flags every command shares. Unset flags keep the value
// from the environment.
type appFlags struct {
	DatabasePath string
	Account      string
}

func (f *appFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.DatabasePath, "db", "", "Path to the database file (default: $DATABASE_PATH or "+config.DefaultDatabasePath+")")
	fs.StringVar(&f.Account, "account", "", "Local id of the account to use (default: the first account)")
}

// open loads the configuration, wires the core and activates the account.
func (f *appFlags) open(ctx context.Context) (*entrypoint.App, error) {
	cfg := config.NewConfig()
	if f.DatabasePath != "" {
		cfg.Database.Path = f.DatabasePath
	}

	app, err := entrypoint.NewApp(ctx, cfg, entrypoint.Connectors{})
	if err != nil {
		return nil, err
	}
	if err := app.Activate(ctx, f.Account); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
