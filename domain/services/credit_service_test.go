package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"treats/domain/entities"
	"treats/domain/events"
	"treats/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPurchaseTreats_Success(t *testing.T) {
	m := newServiceMocks()
	m.expectTransaction()

	account := &entities.Account{ID: "alice", Balance: 10}
	m.ledgerRepo.On("GetByExternalReference", mock.Anything, "stripe:ch_1").Return(nil, nil)
	m.accountRepo.On("GetByIDForUpdate", mock.Anything, "alice").Return(account, nil)
	m.accountRepo.On("Credit", mock.Anything, "alice", int64(100)).Return(nil)
	m.ledgerRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Kind == entities.EntryKindPurchase &&
			e.FromAccount == nil &&
			e.ToAccount == "alice" &&
			e.Amount == 100 &&
			e.ExternalReference != nil && *e.ExternalReference == "stripe:ch_1"
	})).Return(nil)
	m.publisher.On("Publish", events.TreatsPurchasedEvent{
		AccountID:         "alice",
		Amount:            100,
		NewBalance:        110,
		ExternalReference: "stripe:ch_1",
	}).Return(nil)

	svc := NewCreditService(m.factory)
	result, err := svc.PurchaseTreats(context.Background(), "alice", 100, "starter pack", "stripe:ch_1")

	require.NoError(t, err)
	assert.Equal(t, int64(110), result.NewBalance)
	assert.False(t, result.Duplicate)
	m.assertExpectations(t)
}

func TestPurchaseTreats_MissingReference(t *testing.T) {
	m := newServiceMocks()
	svc := NewCreditService(m.factory)

	result, err := svc.PurchaseTreats(context.Background(), "alice", 100, "starter pack", "")

	assert.Nil(t, result)
	assert.Equal(t, entities.ErrorKindInvalidOperation, entities.KindOf(err))
	m.factory.AssertNotCalled(t, "Create")
}

func TestPurchaseTreats_NonPositiveAmount(t *testing.T) {
	m := newServiceMocks()
	svc := NewCreditService(m.factory)

	result, err := svc.PurchaseTreats(context.Background(), "alice", 0, "starter pack", "stripe:ch_1")

	assert.Nil(t, result)
	assert.Equal(t, entities.ErrorKindInvalidOperation, entities.KindOf(err))
}

func TestPurchaseTreats_AccountNotFound(t *testing.T) {
	m := newServiceMocks()
	m.expectRollback()

	m.ledgerRepo.On("GetByExternalReference", mock.Anything, "stripe:ch_1").Return(nil, nil)
	m.accountRepo.On("GetByIDForUpdate", mock.Anything, "ghost").Return(nil, nil)

	svc := NewCreditService(m.factory)
	result, err := svc.PurchaseTreats(context.Background(), "ghost", 100, "starter pack", "stripe:ch_1")

	assert.Nil(t, result)
	assert.Equal(t, entities.ErrorKindNotFound, entities.KindOf(err))
	m.uow.AssertNotCalled(t, "Commit")
}

func TestPurchaseTreats_DuplicateFastPath(t *testing.T) {
	m := newServiceMocks()
	m.expectRollback()

	recorded := &entities.LedgerEntry{ID: 7, ToAccount: "alice", Amount: 100, Kind: entities.EntryKindPurchase}
	account := &entities.Account{ID: "alice", Balance: 110}
	m.ledgerRepo.On("GetByExternalReference", mock.Anything, "stripe:ch_1").Return(recorded, nil)
	m.accountRepo.On("GetByID", mock.Anything, "alice").Return(account, nil)

	svc := NewCreditService(m.factory)
	result, err := svc.PurchaseTreats(context.Background(), "alice", 100, "starter pack", "stripe:ch_1")

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, int64(110), result.NewBalance)
	m.accountRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	m.ledgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPurchaseTreats_ConcurrentDuplicate(t *testing.T) {
	// The reference check misses but the insert collides: a concurrent delivery
	// committed in between. The service rolls back and rereads the balance in a
	// fresh unit of work.
	accountRepo := &testhelpers.MockAccountRepository{}
	ledgerRepo := &testhelpers.MockLedgerRepository{}
	publisher := &testhelpers.MockEventPublisher{}

	first := &testhelpers.MockUnitOfWork{}
	first.SetRepositories(accountRepo, ledgerRepo, publisher)
	first.On("Begin", mock.Anything).Return(nil)
	first.On("Rollback").Return(nil)

	second := &testhelpers.MockUnitOfWork{}
	second.SetRepositories(accountRepo, ledgerRepo, publisher)
	second.On("Begin", mock.Anything).Return(nil)
	second.On("Rollback").Return(nil)

	factory := &testhelpers.MockUnitOfWorkFactory{}
	factory.On("Create").Return(first).Once()
	factory.On("Create").Return(second).Once()

	account := &entities.Account{ID: "alice", Balance: 50}
	ledgerRepo.On("GetByExternalReference", mock.Anything, "stripe:ch_1").Return(nil, nil)
	accountRepo.On("GetByIDForUpdate", mock.Anything, "alice").Return(account, nil)
	accountRepo.On("Credit", mock.Anything, "alice", int64(100)).Return(nil)
	ledgerRepo.On("Record", mock.Anything, mock.Anything).Return(entities.ErrDuplicateReference)

	// the winning delivery already credited this balance
	committed := &entities.Account{ID: "alice", Balance: 150}
	accountRepo.On("GetByID", mock.Anything, "alice").Return(committed, nil)

	svc := NewCreditService(factory)
	result, err := svc.PurchaseTreats(context.Background(), "alice", 100, "starter pack", "stripe:ch_1")

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, int64(150), result.NewBalance)
	first.AssertNotCalled(t, "Commit")
	second.AssertNotCalled(t, "Commit")
	factory.AssertExpectations(t)
}

func TestGrantDailyBonus_ReferenceEncodesAccountAndDay(t *testing.T) {
	m := newServiceMocks()
	m.expectTransaction()

	today := time.Now().UTC().Format("2006-01-02")
	wantRef := fmt.Sprintf("daily_bonus:alice:%s", today)

	account := &entities.Account{ID: "alice", Balance: 0}
	m.ledgerRepo.On("GetByExternalReference", mock.Anything, wantRef).Return(nil, nil)
	m.accountRepo.On("GetByIDForUpdate", mock.Anything, "alice").Return(account, nil)
	m.accountRepo.On("Credit", mock.Anything, "alice", int64(5)).Return(nil)
	m.ledgerRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Kind == entities.EntryKindDailyBonus &&
			e.ExternalReference != nil && strings.HasPrefix(*e.ExternalReference, "daily_bonus:alice:")
	})).Return(nil)
	m.publisher.On("Publish", events.DailyBonusGrantedEvent{
		AccountID:  "alice",
		Amount:     5,
		NewBalance: 5,
	}).Return(nil)

	svc := NewCreditService(m.factory)
	result, err := svc.GrantDailyBonus(context.Background(), "alice", 5)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, int64(5), result.NewBalance)
	m.assertExpectations(t)
}

func TestGrantDailyBonus_SecondGrantSameDay(t *testing.T) {
	m := newServiceMocks()
	m.expectRollback()

	recorded := &entities.LedgerEntry{ID: 3, ToAccount: "alice", Amount: 5, Kind: entities.EntryKindDailyBonus}
	account := &entities.Account{ID: "alice", Balance: 5}
	m.ledgerRepo.On("GetByExternalReference", mock.Anything, mock.Anything).Return(recorded, nil)
	m.accountRepo.On("GetByID", mock.Anything, "alice").Return(account, nil)

	svc := NewCreditService(m.factory)
	result, err := svc.GrantDailyBonus(context.Background(), "alice", 5)

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, int64(5), result.NewBalance)
	m.accountRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}
