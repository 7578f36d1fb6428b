package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/store/memory"
	"github.com/JonMunkholm/crmport/internal/store/sqlite"
)

func TestOpenMemory(t *testing.T) {
	b, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.Store{}, b)
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "crm.db"),
	})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &sqlite.Store{}, b)

	_, err = b.CreateAccount(ctx, model.Account{CompanyName: "Acme"})
	require.NoError(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDriver))
	assert.Contains(t, err.Error(), `"mongo"`)
	assert.NotEmpty(t, errors.GetAllHints(err))
}
