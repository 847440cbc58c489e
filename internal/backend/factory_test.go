package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/config"
	"estoque/internal/statistics"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", SeedFile: "seed.json"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "seed.json", cfg.SeedFile)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Type: RemoteBackend}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Equal(t, []string{"remote", "sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil, nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	require.NotNil(t, res.Writer)
	assert.NoError(t, res.Close())

	recent, err := res.Source.RecentTransactions(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestCreateSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil, nil)
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(dir, "estoque.db"),
		SeedFile:     filepath.Join(dir, "missing.json"),
	}

	res, err := f.CreateBackend(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	_, isPinger := res.Source.(statistics.Pinger)
	assert.True(t, isPinger)
	dash, err := res.Source.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Positive(t, dash.Inventory.TotalItems)
}

func TestCreateRemoteBackend(t *testing.T) {
	f := NewFactory(nil, nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: RemoteBackend, APIBaseURL: "http://localhost:8000"})
	require.NoError(t, err)
	assert.Nil(t, res.Writer)
	assert.NotNil(t, res.Source)

	_, err = f.CreateBackend(context.Background(), Config{Type: RemoteBackend, APIBaseURL: "ftp://nope"})
	assert.Error(t, err)
}
