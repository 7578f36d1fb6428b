package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmport/internal/model"
	"github.com/JonMunkholm/crmport/internal/store/memory"
)

// gatedStore holds every account write until release is closed, keeping an
// import in flight for as long as a test needs.
type gatedStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		Store:   memory.New(),
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.Store.CreateAccount(ctx, a)
}

type importResult struct {
	report *Report
	err    error
}

// startImport runs an import in the background and waits until it is
// writing to the store.
func startImport(t *testing.T, svc *Service, store *gatedStore, name string) <-chan importResult {
	t.Helper()
	done := make(chan importResult, 1)
	go func() {
		report, err := svc.Import(context.Background(), accountsCSV(name), "accounts.csv")
		done <- importResult{report, err}
	}()

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("import never reached the store")
	}
	return done
}

func awaitImport(t *testing.T, done <-chan importResult) importResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(time.Second):
		t.Fatal("import did not finish")
		return importResult{}
	}
}

func TestNewImportLimiter_Defaults(t *testing.T) {
	l := NewImportLimiter(0, 0)

	assert.Equal(t, DefaultMaxConcurrentImports, l.MaxConcurrent())
	assert.Equal(t, DefaultMaxWaitTime, l.maxWait)
	assert.Equal(t, LimiterStatus{Active: 0, Available: 3, MaxConcurrent: 3}, l.Status())
}

func TestImport_HoldsSlotForWholeRun(t *testing.T) {
	store := newGatedStore()
	cfg := testImportConfig()
	cfg.MaxConcurrent = 1
	svc := NewService(store, cfg)

	done := startImport(t, svc, store, "Acme")
	assert.Equal(t, LimiterStatus{Active: 1, Available: 0, MaxConcurrent: 1}, svc.LimiterStatus())

	close(store.release)
	res := awaitImport(t, done)
	require.NoError(t, res.err)
	assert.True(t, res.report.Success)
	assert.Equal(t, 0, svc.LimiterStatus().Active)
}

func TestImport_RejectedWhenSlotsFull(t *testing.T) {
	store := newGatedStore()
	cfg := testImportConfig()
	cfg.MaxConcurrent = 1
	svc := NewService(store, cfg)

	done := startImport(t, svc, store, "Acme")

	_, err := svc.Import(context.Background(), accountsCSV("Beta"), "accounts.csv")
	require.ErrorIs(t, err, ErrTooManyImports)
	assert.Equal(t, "IMP001", MapError(err).Code)

	close(store.release)
	require.NoError(t, awaitImport(t, done).err)

	runs := svc.History()
	require.Len(t, runs, 1, "rejected imports are not recorded")
	assert.Equal(t, 1, runs[0].Report.Imported[EntityAccounts])
}

func TestImport_WaiterTakesFreedSlot(t *testing.T) {
	store := newGatedStore()
	cfg := testImportConfig()
	cfg.MaxConcurrent = 1
	cfg.MaxWaitTime = 5 * time.Second
	svc := NewService(store, cfg)

	first := startImport(t, svc, store, "Acme")

	second := make(chan importResult, 1)
	go func() {
		report, err := svc.Import(context.Background(), accountsCSV("Beta"), "accounts.csv")
		second <- importResult{report, err}
	}()

	select {
	case <-second:
		t.Fatal("second import ran while the slot was held")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	require.NoError(t, awaitImport(t, first).err)
	res := awaitImport(t, second)
	require.NoError(t, res.err)
	assert.True(t, res.report.Success)

	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestImport_CallerCancelsWhileWaiting(t *testing.T) {
	store := newGatedStore()
	cfg := testImportConfig()
	cfg.MaxConcurrent = 1
	cfg.MaxWaitTime = 5 * time.Second
	svc := NewService(store, cfg)

	done := startImport(t, svc, store, "Acme")
	defer func() {
		close(store.release)
		awaitImport(t, done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	report, err := svc.Import(ctx, accountsCSV("Beta"), "accounts.csv")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, report)
	assert.Less(t, time.Since(start), time.Second, "wait ends with the caller")
	assert.Equal(t, 1, svc.LimiterStatus().Active)
}

func TestWaitForImports_DrainsRunningImport(t *testing.T) {
	store := newGatedStore()
	svc := NewService(store, testImportConfig())

	require.NoError(t, svc.WaitForImports(context.Background()), "idle service drains at once")

	done := startImport(t, svc, store, "Acme")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.WaitForImports(ctx), context.DeadlineExceeded)

	drained := make(chan error, 1)
	go func() { drained <- svc.WaitForImports(context.Background()) }()

	close(store.release)
	require.NoError(t, awaitImport(t, done).err)

	select {
	case err := <-drained:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("drain did not return after the import finished")
	}
	assert.Len(t, svc.History(), 1)
}
