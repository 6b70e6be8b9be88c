package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"treats/domain/entities"
	"treats/domain/events"
	"treats/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type creditService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewCreditService creates a new credit service
func NewCreditService(uowFactory interfaces.UnitOfWorkFactory) interfaces.CreditService {
	return &creditService{uowFactory: uowFactory}
}

// PurchaseTreats credits amount to the account at most once per distinct
// externalReference. A retry, including one racing the original delivery,
// returns Duplicate=true with the account's current balance.
func (s *creditService) PurchaseTreats(ctx context.Context, userID string, amount int64, description, externalReference string) (*entities.PurchaseResult, error) {
	if externalReference == "" {
		return nil, entities.NewInvalidOperation("external reference is required")
	}
	return s.credit(ctx, userID, amount, description, externalReference, entities.EntryKindPurchase)
}

// GrantDailyBonus credits the daily bonus, sharing the purchase idempotency
// mechanism: the external reference encodes the account and UTC day, so the
// unique constraint allows at most one grant per account per day.
func (s *creditService) GrantDailyBonus(ctx context.Context, userID string, amount int64) (*entities.PurchaseResult, error) {
	ref := fmt.Sprintf("daily_bonus:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))
	return s.credit(ctx, userID, amount, "daily bonus", ref, entities.EntryKindDailyBonus)
}

func (s *creditService) credit(ctx context.Context, userID string, amount int64, description, externalReference string, kind entities.EntryKind) (*entities.PurchaseResult, error) {
	if amount <= 0 {
		return nil, entities.NewInvalidOperation("credit amount must be positive")
	}
	if userID == "" {
		return nil, entities.NewInvalidOperation("account is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	// Fast path for redelivered webhooks: the reference is already recorded,
	// so return the current balance without mutating anything.
	existing, err := uow.LedgerRepository().GetByExternalReference(ctx, externalReference)
	if err != nil {
		return nil, entities.NewUnexpected("failed to check external reference", err)
	}
	if existing != nil {
		account, err := uow.AccountRepository().GetByID(ctx, userID)
		if err != nil {
			return nil, entities.NewUnexpected("failed to load account", err)
		}
		if account == nil {
			return nil, entities.NewNotFound("account %s not found", userID)
		}
		return &entities.PurchaseResult{NewBalance: account.Balance, Duplicate: true}, nil
	}

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load account", err)
	}
	if account == nil {
		return nil, entities.NewNotFound("account %s not found", userID)
	}

	if err := uow.AccountRepository().Credit(ctx, userID, amount); err != nil {
		return nil, entities.NewUnexpected("failed to credit account", err)
	}

	entry := &entities.LedgerEntry{
		ToAccount:         userID,
		Amount:            amount,
		Kind:              kind,
		Description:       description,
		ExternalReference: &externalReference,
	}
	err = uow.LedgerRepository().Record(ctx, entry)
	if errors.Is(err, entities.ErrDuplicateReference) {
		// A concurrent delivery of the same reference committed first. The
		// unique index serialized the race: roll back and report a duplicate
		// with the balance that delivery produced.
		if rbErr := uow.Rollback(); rbErr != nil {
			return nil, entities.NewUnexpected("failed to roll back duplicate credit", rbErr)
		}
		log.WithFields(log.Fields{
			"account":           userID,
			"externalReference": externalReference,
		}).Info("Concurrent duplicate credit detected, taking duplicate path")
		return s.currentBalance(ctx, userID)
	}
	if err != nil {
		return nil, entities.NewUnexpected("failed to record ledger entry", err)
	}

	newBalance := account.BalanceAfter(amount)

	event := creditEvent(kind, userID, amount, newBalance, externalReference)
	if err := uow.EventBus().Publish(event); err != nil {
		return nil, entities.NewUnexpected("failed to publish event", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit credit", err)
	}

	return &entities.PurchaseResult{NewBalance: newBalance, Duplicate: false}, nil
}

// currentBalance reads the account balance in a fresh read-only unit of work
func (s *creditService) currentBalance(ctx context.Context, userID string) (*entities.PurchaseResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load account", err)
	}
	if account == nil {
		return nil, entities.NewNotFound("account %s not found", userID)
	}

	return &entities.PurchaseResult{NewBalance: account.Balance, Duplicate: true}, nil
}

func creditEvent(kind entities.EntryKind, userID string, amount, newBalance int64, externalReference string) events.Event {
	if kind == entities.EntryKindDailyBonus {
		return events.DailyBonusGrantedEvent{
			AccountID:  userID,
			Amount:     amount,
			NewBalance: newBalance,
		}
	}
	return events.TreatsPurchasedEvent{
		AccountID:         userID,
		Amount:            amount,
		NewBalance:        newBalance,
		ExternalReference: externalReference,
	}
}
