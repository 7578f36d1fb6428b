package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/store/memory"
)

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		MaxFileSize:   1 << 20,
		MaxConcurrent: 2,
		MaxWaitTime:   50 * time.Millisecond,
		Timeout:       5 * time.Second,
		HistorySize:   2,
	}
}

// panicStore blows up on the first account write.
type panicStore struct {
	*memory.Store
}

func (panicStore) CreateAccount(context.Context, model.Account) (model.Account, error) {
	panic("disk on fire")
}

func accountsCSV(names ...string) []byte {
	lines := []string{"Company Name"}
	lines = append(lines, names...)
	return csvMember("accounts.csv", lines...).Content
}

func TestService_ImportRecordsHistory(t *testing.T) {
	svc := NewService(memory.New(), testImportConfig())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		report, err := svc.Import(ctx, accountsCSV(fmt.Sprintf("Company %d", i)), fmt.Sprintf("run%d.csv", i))
		require.NoError(t, err)
		require.True(t, report.Success)
	}

	runs := svc.History()
	require.Len(t, runs, 2, "history is capped")
	assert.Equal(t, "run3.csv", runs[0].FileName)
	assert.Equal(t, "run2.csv", runs[1].FileName)
	assert.Equal(t, 1, runs[0].Report.Imported[EntityAccounts])
	assert.NotEqual(t, runs[0].ID, runs[1].ID)
	assert.Positive(t, runs[0].Size)
}

func TestService_ImportIgnoresCallerCancellationOnceStarted(t *testing.T) {
	store := memory.New()
	svc := NewService(store, testImportConfig())

	// A context cancelled after acquisition still runs to completion
	// because the run is detached from the caller.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := svc.Import(ctx, accountsCSV("Acme", "Beta"), "accounts.csv")
	require.NoError(t, err)
	cancel()

	require.True(t, report.Success)
	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestService_ImportRecoversPanic(t *testing.T) {
	svc := NewService(panicStore{memory.New()}, testImportConfig())

	report, err := svc.Import(context.Background(), accountsCSV("Acme"), "accounts.csv")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Success)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "disk on fire")

	assert.Equal(t, 0, svc.LimiterStatus().Active, "slot released after panic")
	assert.Len(t, svc.History(), 1)
}

func TestService_Export(t *testing.T) {
	store := memory.New()
	svc := NewService(store, testImportConfig())
	ctx := context.Background()

	report, err := svc.Import(ctx, accountsCSV("Acme"), "accounts.csv")
	require.NoError(t, err)
	require.True(t, report.Success)

	data, err := svc.Export(ctx)
	require.NoError(t, err)

	tables := readMembers(t, data)
	require.Len(t, tables["accounts.csv"].Rows, 1)
	assert.Equal(t, "Acme", tables["accounts.csv"].Rows[0].Get("company_name").String())
	assert.Equal(t, "Prospect", tables["accounts.csv"].Rows[0].Get("account_status").String())
}

func TestService_ExportStoreFailure(t *testing.T) {
	svc := NewService(memory.New(), testImportConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Export(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list accounts")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestService_Validate(t *testing.T) {
	svc := NewService(memory.New(), testImportConfig())

	results, err := svc.Validate(accountsCSV("Acme"), "accounts.csv")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)
	assert.Equal(t, string(EntityAccounts), results[0].DataType)
}

func TestService_LimiterStatus(t *testing.T) {
	svc := NewService(memory.New(), testImportConfig())

	assert.Equal(t, LimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2}, svc.LimiterStatus())
}
