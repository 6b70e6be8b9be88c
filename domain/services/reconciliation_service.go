package services

import (
	"context"

	"treats/domain/entities"
	"treats/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type reconciliationService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(uowFactory interfaces.UnitOfWorkFactory) interfaces.ReconciliationService {
	return &reconciliationService{uowFactory: uowFactory}
}

// Reconcile recomputes every account's balance and counters from the ledger
// and repairs cached columns that drifted. The ledger is the source of truth;
// the cached columns exist only to keep reads and the all_time leaderboard
// cheap. Runs in one transaction so a repair never races a concurrent give.
func (s *reconciliationService) Reconcile(ctx context.Context) (*entities.ReconciliationReport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, entities.NewUnexpected("failed to begin transaction", err)
	}
	defer uow.Rollback()

	totals, err := uow.LedgerRepository().AccountTotals(ctx)
	if err != nil {
		return nil, entities.NewUnexpected("failed to compute ledger totals", err)
	}

	derived := make(map[string]*entities.AccountTotals, len(totals))
	for _, t := range totals {
		derived[t.AccountID] = t
	}

	accounts, err := uow.AccountRepository().GetAll(ctx)
	if err != nil {
		return nil, entities.NewUnexpected("failed to list accounts", err)
	}

	report := &entities.ReconciliationReport{}
	for _, account := range accounts {
		report.Checked++

		want, ok := derived[account.ID]
		if !ok {
			// No ledger entries for this account: everything must be zero
			want = &entities.AccountTotals{AccountID: account.ID}
		}

		if account.Balance == want.Balance &&
			account.TotalGiven == want.TotalGiven &&
			account.TotalReceived == want.TotalReceived {
			continue
		}

		report.Drifted++
		log.WithFields(log.Fields{
			"account":            account.ID,
			"cachedBalance":      account.Balance,
			"ledgerBalance":      want.Balance,
			"cachedGiven":        account.TotalGiven,
			"ledgerGiven":        want.TotalGiven,
			"cachedReceived":     account.TotalReceived,
			"ledgerReceived":     want.TotalReceived,
		}).Warn("Account drifted from ledger, repairing")

		if err := uow.AccountRepository().SetDerived(ctx, account.ID, want.Balance, want.TotalGiven, want.TotalReceived); err != nil {
			return nil, entities.NewUnexpected("failed to repair account", err)
		}
		report.Repaired++
	}

	if err := uow.Commit(); err != nil {
		return nil, entities.NewUnexpected("failed to commit reconciliation", err)
	}

	return report, nil
}
