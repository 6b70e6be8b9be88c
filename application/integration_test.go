package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"treats/domain/entities"
	"treats/domain/services"
	"treats/domain/testhelpers"
	"treats/infrastructure"
	"treats/repository"
	"treats/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupStack(t *testing.T) (*testutil.TestDatabase, *infrastructure.UnitOfWorkFactory) {
	testDB := testutil.SetupTestDatabase(t)
	factory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())
	return testDB, factory
}

func TestGiveTreats_EndToEnd(t *testing.T) {
	testDB, factory := setupStack(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 50)
	testutil.CreateTestAccount(t, testDB.DB, "bob", 0)

	subjects := &testhelpers.MockSubjectResolver{}
	subjects.On("OwnerOf", mock.Anything, "photo-1").Return("bob", nil)

	transfer := services.NewTransferService(factory, subjects)
	result, err := transfer.GiveTreats(ctx, "alice", "photo-1", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(30), result.NewBalance)

	accounts := repository.NewAccountRepository(testDB.DB)
	bob, err := accounts.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(20), bob.Balance)
	assert.Equal(t, int64(20), bob.TotalReceived)

	ledger := repository.NewLedgerRepository(testDB.DB)
	entries, err := ledger.GetByAccount(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.EntryKindGive, entries[0].Kind)
}

func TestGiveTreats_ConcurrentGivesNeverOverdraw(t *testing.T) {
	// Twenty goroutines race to spend a balance that covers exactly one give.
	// The sender row lock serializes them: one commits, the rest fail with
	// insufficient_funds, and the ledger holds exactly one entry.
	testDB, factory := setupStack(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 5)
	testutil.CreateTestAccount(t, testDB.DB, "bob", 0)

	subjects := &testhelpers.MockSubjectResolver{}
	subjects.On("OwnerOf", mock.Anything, "photo-1").Return("bob", nil)
	transfer := services.NewTransferService(factory, subjects)

	const workers = 20
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = transfer.GiveTreats(ctx, "alice", "photo-1", 5)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, entities.ErrorKindInsufficientFunds, entities.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)

	accounts := repository.NewAccountRepository(testDB.DB)
	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), alice.Balance)

	bob, err := accounts.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(5), bob.Balance)

	ledger := repository.NewLedgerRepository(testDB.DB)
	entries, err := ledger.GetByAccount(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPurchaseTreats_ConcurrentDeliveriesCreditOnce(t *testing.T) {
	testDB, factory := setupStack(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 0)

	credit := services.NewCreditService(factory)

	const workers = 10
	results := make([]*entities.PurchaseResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = credit.PurchaseTreats(ctx, "alice", 100, "starter pack", "stripe:ch_1")
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(100), results[i].NewBalance)
		if !results[i].Duplicate {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)

	accounts := repository.NewAccountRepository(testDB.DB)
	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), alice.Balance)
}

func TestReconcile_RepairsDriftedCounters(t *testing.T) {
	testDB, factory := setupStack(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 0)

	credit := services.NewCreditService(factory)
	_, err := credit.PurchaseTreats(ctx, "alice", 100, "starter pack", "stripe:ch_1")
	require.NoError(t, err)

	// simulate drift the way a partial outage would leave it
	_, err = testDB.DB.Exec(ctx, `UPDATE accounts SET balance = 7 WHERE id = 'alice'`)
	require.NoError(t, err)

	reconciler := services.NewReconciliationService(factory)
	report, err := reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Drifted)
	assert.Equal(t, 1, report.Repaired)

	accounts := repository.NewAccountRepository(testDB.DB)
	alice, err := accounts.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), alice.Balance)

	// a second pass finds nothing to do
	report, err = reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Drifted)
}

func TestLeaderboard_EndToEnd(t *testing.T) {
	testDB, factory := setupStack(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 100)
	for i := 0; i < 3; i++ {
		testutil.CreateTestAccount(t, testDB.DB, fmt.Sprintf("creator-%d", i), 0)
	}

	subjects := &testhelpers.MockSubjectResolver{}
	for i := 0; i < 3; i++ {
		subjects.On("OwnerOf", mock.Anything, fmt.Sprintf("photo-%d", i)).Return(fmt.Sprintf("creator-%d", i), nil)
	}
	transfer := services.NewTransferService(factory, subjects)

	// creator-2 receives the most, then creator-1, then creator-0
	for i := 0; i < 3; i++ {
		_, err := transfer.GiveTreats(ctx, "alice", fmt.Sprintf("photo-%d", i), int64(i+1)*10)
		require.NoError(t, err)
	}

	profiles := &testhelpers.MockProfileDirectory{}
	profiles.On("GetProfiles", mock.Anything, mock.Anything).Return(map[string]entities.Profile{}, nil)
	leaderboard := services.NewLeaderboardService(factory, profiles)

	for _, period := range []entities.LeaderboardPeriod{entities.PeriodAllTime, entities.PeriodWeekly, entities.PeriodMonthly} {
		entries, err := leaderboard.GetLeaderboard(ctx, period)
		require.NoError(t, err, "period %s", period)
		require.Len(t, entries, 3, "period %s ranks only accounts that received", period)
		assert.Equal(t, "creator-2", entries[0].AccountID)
		assert.Equal(t, int64(30), entries[0].TotalReceived)
		assert.Equal(t, "creator-1", entries[1].AccountID)
		assert.Equal(t, "creator-0", entries[2].AccountID)
	}
}
