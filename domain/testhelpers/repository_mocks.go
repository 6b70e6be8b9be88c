package testhelpers

import (
	"context"
	"time"

	"treats/domain/entities"
	"treats/domain/events"
	"treats/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, id string) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) DebitForGive(ctx context.Context, id string, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) CreditForGive(ctx context.Context, id string, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) Credit(ctx context.Context, id string, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) SetDerived(ctx context.Context, id string, balance, totalGiven, totalReceived int64) error {
	args := m.Called(ctx, id, balance, totalGiven, totalReceived)
	return args.Error(0)
}

func (m *MockAccountRepository) ListTopByTotalReceived(ctx context.Context, limit int) ([]*entities.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByExternalReference(ctx context.Context, ref string) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) TopReceiversSince(ctx context.Context, since time.Time, limit int) ([]*entities.ReceiverTotal, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ReceiverTotal), args.Error(1)
}

func (m *MockLedgerRepository) AccountTotals(ctx context.Context) ([]*entities.AccountTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AccountTotals), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockSubjectResolver is a mock implementation of SubjectResolver
type MockSubjectResolver struct {
	mock.Mock
}

func (m *MockSubjectResolver) OwnerOf(ctx context.Context, subjectID string) (string, error) {
	args := m.Called(ctx, subjectID)
	return args.String(0), args.Error(1)
}

// MockProfileDirectory is a mock implementation of ProfileDirectory
type MockProfileDirectory struct {
	mock.Mock
}

func (m *MockProfileDirectory) GetProfiles(ctx context.Context, accountIDs []string) (map[string]entities.Profile, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]entities.Profile), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories before use.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
}

// SetRepositories wires the repositories and publisher this unit of work exposes
func (m *MockUnitOfWork) SetRepositories(accountRepo interfaces.AccountRepository, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher) {
	m.accountRepo = accountRepo
	m.ledgerRepo = ledgerRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	args := m.Called()
	return args.Get(0).(interfaces.UnitOfWork)
}
