package services

import (
	"context"
	"fmt"

	"treats/domain/entities"
	"treats/domain/events"
	"treats/domain/interfaces"
)

type transferService struct {
	uowFactory interfaces.UnitOfWorkFactory
	subjects   interfaces.SubjectResolver
}

// NewTransferService creates a new transfer service
func NewTransferService(uowFactory interfaces.UnitOfWorkFactory, subjects interfaces.SubjectResolver) interfaces.TransferService {
	return &transferService{
		uowFactory: uowFactory,
		subjects:   subjects,
	}
}

// GiveTreats moves amount from the sender to the owner of the subject. The
// subject lookup resolves before the transaction opens so the sender's row
// lock is only held for the balance check, the mutations and the ledger
// append. Either everything commits or nothing does.
func (s *transferService) GiveTreats(ctx context.Context, senderID, subjectID string, amount int64) (*entities.GiveResult, error) {
	if amount <= 0 {
		return nil, entities.NewInvalidOperation("treat amount must be positive")
	}
	if senderID == "" {
		return nil, entities.NewInvalidOperation("sender is required")
	}

	receiverID, err := s.subjects.OwnerOf(ctx, subjectID)
	if err != nil {
		return nil, entities.NewUnexpected("failed to resolve subject owner", err)
	}
	if receiverID == "" {
		return nil, entities.NewNotFound("subject %s not found", subjectID)
	}
	if receiverID == senderID {
		return nil, entities.NewInvalidOperation("cannot tip yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	sender, err := uow.AccountRepository().GetByIDForUpdate(ctx, senderID)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load sender account", err)
	}
	if sender == nil {
		return nil, entities.NewNotFound("sender account %s not found", senderID)
	}

	if !sender.HasSufficientBalance(amount) {
		return nil, entities.NewInsufficientFunds("insufficient balance: have %d, need %d", sender.Balance, amount)
	}

	receiver, err := uow.AccountRepository().GetByID(ctx, receiverID)
	if err != nil {
		return nil, entities.NewUnexpected("failed to load receiver account", err)
	}
	if receiver == nil {
		return nil, entities.NewNotFound("receiver account %s not found", receiverID)
	}

	if err := uow.AccountRepository().DebitForGive(ctx, senderID, amount); err != nil {
		return nil, entities.NewUnexpected("failed to debit sender", err)
	}
	if err := uow.AccountRepository().CreditForGive(ctx, receiverID, amount); err != nil {
		return nil, entities.NewUnexpected("failed to credit receiver", err)
	}

	entry := &entities.LedgerEntry{
		FromAccount:      &senderID,
		ToAccount:        receiverID,
		SubjectReference: &subjectID,
		Amount:           amount,
		Kind:             entities.EntryKindGive,
		Description:      fmt.Sprintf("treats for %s", subjectID),
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, entities.NewUnexpected("failed to record ledger entry", err)
	}

	newBalance := sender.BalanceAfter(-amount)

	if err := uow.EventBus().Publish(events.TreatsGivenEvent{
		SenderID:         senderID,
		ReceiverID:       receiverID,
		SubjectReference: subjectID,
		Amount:           amount,
		SenderBalance:    newBalance,
	}); err != nil {
		return nil, entities.NewUnexpected("failed to publish event", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit transfer", err)
	}

	return &entities.GiveResult{
		NewBalance: newBalance,
		ReceiverID: receiverID,
	}, nil
}
