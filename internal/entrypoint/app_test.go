package entrypoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/config"
	"github.com/mrlokans/schooldesk/internal/entities"
)

func testConfig(t *testing.T, backend config.StorageBackend) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(dir, "schooldesk.db")
	cfg.Storage.Backend = backend
	cfg.Security.KeyFilePath = filepath.Join(dir, "schooldesk.key")
	cfg.SchoolYear.DefaultStartMonth = time.September
	cfg.Audit.Dir = filepath.Join(dir, "audit")
	return cfg
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "etcd")

	_, err := NewApp(context.Background(), cfg, Connectors{})
	assert.ErrorContains(t, err, "STORAGE_BACKEND")
}

func TestNewApp_ActivateWithoutAccounts(t *testing.T) {
	cfg := testConfig(t, config.StorageMemory)

	app, err := NewApp(context.Background(), cfg, Connectors{})
	require.NoError(t, err)
	defer app.Close()

	_, err = os.Stat(cfg.Security.KeyFilePath)
	assert.NoError(t, err, "master key should be written on first start")

	require.NoError(t, app.Activate(context.Background(), ""))
	_, ok := app.Accounts.Current()
	assert.False(t, ok)
}

func TestNewApp_AccountsSurviveRestartOnSQLite(t *testing.T) {
	cfg := testConfig(t, config.StorageSQLite)
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, Connectors{})
	require.NoError(t, err)
	created, err := app.Accounts.Create(ctx, entities.Account{Service: entities.ServiceLocal, Name: "Home"})
	require.NoError(t, err)
	app.Close()

	app, err = NewApp(ctx, cfg, Connectors{})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Activate(ctx, ""))
	current, ok := app.Accounts.Current()
	require.True(t, ok)
	assert.Equal(t, created.LocalID, current.LocalID)

	outcome, err := app.Refresher.RefreshDomain(ctx, "", entities.DomainHomework, 0)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(outcome))
}

func TestApp_ActivateProviderWithoutConnector(t *testing.T) {
	cfg := testConfig(t, config.StorageMemory)
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, Connectors{})
	require.NoError(t, err)
	defer app.Close()

	created, err := app.Accounts.Create(ctx, entities.Account{
		Service:        entities.ServiceARD,
		Name:           "Canteen",
		Authentication: map[string]string{"username": "parent", "password": "secret"},
	})
	require.NoError(t, err)

	require.NoError(t, app.Activate(ctx, created.LocalID), "a failed reload keeps the account current")
	current, ok := app.Accounts.Current()
	require.True(t, ok)
	assert.Equal(t, created.LocalID, current.LocalID)
}

func TestApp_ActivateRestoresLastCurrent(t *testing.T) {
	cfg := testConfig(t, config.StorageSQLite)
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, Connectors{})
	require.NoError(t, err)
	_, err = app.Accounts.Create(ctx, entities.Account{Service: entities.ServiceLocal, Name: "First"})
	require.NoError(t, err)
	second, err := app.Accounts.Create(ctx, entities.Account{Service: entities.ServiceLocal, Name: "Second"})
	require.NoError(t, err)
	require.NoError(t, app.Activate(ctx, second.LocalID))
	app.Close()

	app, err = NewApp(ctx, cfg, Connectors{})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Activate(ctx, ""))
	current, ok := app.Accounts.Current()
	require.True(t, ok)
	assert.Equal(t, second.LocalID, current.LocalID)

	err = app.Activate(ctx, "0b6c8f3e-7d4a-4c11-9e2f-5a1d3c7b9eff")
	assert.Error(t, err)
}
