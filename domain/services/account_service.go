package services

import (
	"context"

	"treats/domain/entities"
	"treats/domain/events"
	"treats/domain/interfaces"
)

type accountService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory interfaces.UnitOfWorkFactory) interfaces.AccountService {
	return &accountService{uowFactory: uowFactory}
}

// EnsureAccount creates the account for a new identity with a zero balance.
// The identity sync path calls this on every identity creation; repeats are
// safe and return the existing account.
func (s *accountService) EnsureAccount(ctx context.Context, id string) (*entities.Account, error) {
	if id == "" {
		return nil, entities.NewInvalidOperation("account id is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load account", err)
	}
	if account == nil {
		account, err = uow.AccountRepository().Create(ctx, id)
		if err != nil {
			return nil, entities.NewUnexpected("failed to create account", err)
		}
		if err := uow.EventBus().Publish(events.AccountCreatedEvent{AccountID: id}); err != nil {
			return nil, entities.NewUnexpected("failed to publish event", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit account creation", err)
	}

	return account, nil
}

// GetAccount retrieves an account or fails with not_found
func (s *accountService) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load account", err)
	}
	if account == nil {
		return nil, entities.NewNotFound("account %s not found", id)
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit account read", err)
	}

	return account, nil
}

// GetHistory returns an account's ledger entries, newest first
func (s *accountService) GetHistory(ctx context.Context, id string, limit int) ([]*entities.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load account", err)
	}
	if account == nil {
		return nil, entities.NewNotFound("account %s not found", id)
	}

	entries, err := uow.LedgerRepository().GetByAccount(ctx, id, limit)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load ledger entries", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit history read", err)
	}

	return entries, nil
}
