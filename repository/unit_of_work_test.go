package repository

import (
	"context"
	"testing"

	"treats/domain/events"
	"treats/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher is a minimal transactional publisher for unit of work tests
type capturePublisher struct {
	pending   []events.Event
	flushed   []events.Event
	discarded int
}

func (p *capturePublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *capturePublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *capturePublisher) Discard() {
	p.discarded += len(p.pending)
	p.pending = nil
}

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 100)
	testutil.CreateTestAccount(t, testDB.DB, "bob", 0)

	pub := &capturePublisher{}
	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(pub)
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.AccountRepository().DebitForGive(ctx, "alice", 10))
	require.NoError(t, uow.AccountRepository().CreditForGive(ctx, "bob", 10))
	require.NoError(t, uow.LedgerRepository().Record(ctx, testutil.GiveEntry("alice", "bob", "photo-1", 10)))
	require.NoError(t, uow.EventBus().Publish(events.TreatsGivenEvent{SenderID: "alice", ReceiverID: "bob", Amount: 10}))

	require.NoError(t, uow.Commit())

	assert.Len(t, pub.flushed, 1)
	assert.Zero(t, pub.discarded)

	alice, err := NewAccountRepository(testDB.DB).GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(90), alice.Balance)
}

func TestUnitOfWork_RollbackDiscardsEverything(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 100)

	pub := &capturePublisher{}
	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(pub)
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.AccountRepository().DebitForGive(ctx, "alice", 10))
	require.NoError(t, uow.EventBus().Publish(events.TreatsGivenEvent{SenderID: "alice"}))

	require.NoError(t, uow.Rollback())

	assert.Empty(t, pub.flushed)
	assert.Equal(t, 1, pub.discarded)

	alice, err := NewAccountRepository(testDB.DB).GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), alice.Balance)
}

func TestUnitOfWork_RollbackAfterCommitIsNoOp(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.CreateTestAccount(t, testDB.DB, "alice", 100)

	pub := &capturePublisher{}
	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(pub)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AccountRepository().Credit(ctx, "alice", 1))
	require.NoError(t, uow.Commit())

	require.NoError(t, uow.Rollback())

	alice, err := NewAccountRepository(testDB.DB).GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(101), alice.Balance)
}

func TestUnitOfWork_DoubleBeginFails(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uow := NewUnitOfWorkFactory(testDB.DB).CreateWithPublisher(&capturePublisher{})
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}
