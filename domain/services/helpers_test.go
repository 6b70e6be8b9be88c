package services

import (
	"treats/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// serviceMocks bundles everything a service test needs wired together
type serviceMocks struct {
	factory     *testhelpers.MockUnitOfWorkFactory
	uow         *testhelpers.MockUnitOfWork
	accountRepo *testhelpers.MockAccountRepository
	ledgerRepo  *testhelpers.MockLedgerRepository
	publisher   *testhelpers.MockEventPublisher
}

// newServiceMocks creates a factory whose unit of work exposes fresh
// repository mocks. Begin/Commit/Rollback still need expectations; use
// expectTransaction for the common case.
func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		factory:     &testhelpers.MockUnitOfWorkFactory{},
		uow:         &testhelpers.MockUnitOfWork{},
		accountRepo: &testhelpers.MockAccountRepository{},
		ledgerRepo:  &testhelpers.MockLedgerRepository{},
		publisher:   &testhelpers.MockEventPublisher{},
	}
	m.uow.SetRepositories(m.accountRepo, m.ledgerRepo, m.publisher)
	m.factory.On("Create").Return(m.uow)
	return m
}

// expectTransaction sets up the happy-path transaction lifecycle: Begin and
// Commit succeed, and the deferred Rollback after commit is a no-op.
func (m *serviceMocks) expectTransaction() {
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
}

// expectRollback sets up a transaction that begins but never commits
func (m *serviceMocks) expectRollback() {
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil)
}

func (m *serviceMocks) assertExpectations(t mock.TestingT) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.accountRepo.AssertExpectations(t)
	m.ledgerRepo.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}
