package infrastructure

import (
	"treats/database"
	"treats/domain/interfaces"
	"treats/repository"
)

// UnitOfWorkFactory creates units of work whose events are delivered to the
// configured publisher only after commit
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(publisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a fresh transactional publisher
func (f *UnitOfWorkFactory) Create() interfaces.UnitOfWork {
	transactionalPublisher := NewTransactionalPublisher(f.eventPublisher)
	return f.repoFactory.CreateWithPublisher(transactionalPublisher)
}
