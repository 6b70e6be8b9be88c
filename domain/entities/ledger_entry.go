package entities

import (
	"errors"
	"time"
)

// LedgerEntry is the immutable record of one balance-affecting event.
// Entries are append-only: they are never updated or removed after creation,
// and account balances must always be reconstructible from them.
type LedgerEntry struct {
	ID                int64      `db:"id"`
	FromAccount       *string    `db:"from_account"`
	ToAccount         string     `db:"to_account"`
	SubjectReference  *string    `db:"subject_reference"`
	Amount            int64      `db:"amount"`
	Kind              EntryKind  `db:"kind"`
	Description       string     `db:"description"`
	ExternalReference *string    `db:"external_reference"`
	CreatedAt         time.Time  `db:"created_at"`
}

// Validate checks the ledger invariants before an entry is recorded
func (e *LedgerEntry) Validate() error {
	if e.Amount <= 0 {
		return errors.New("entry amount must be positive")
	}
	if !e.Kind.IsValid() {
		return errors.New("unknown entry kind")
	}
	if e.ToAccount == "" {
		return errors.New("entry must have a receiving account")
	}
	switch {
	case e.Kind == EntryKindGive:
		if e.FromAccount == nil || *e.FromAccount == "" {
			return errors.New("give entry must have a sending account")
		}
		if *e.FromAccount == e.ToAccount {
			return errors.New("give entry sender and receiver must differ")
		}
	case e.Kind.IsCreditOnly():
		if e.FromAccount != nil {
			return errors.New("credit entry must not have a sending account")
		}
	}
	return nil
}

// IsCreditTo returns true if the entry credits the given account
func (e *LedgerEntry) IsCreditTo(accountID string) bool {
	return e.ToAccount == accountID
}

// IsDebitFrom returns true if the entry debits the given account
func (e *LedgerEntry) IsDebitFrom(accountID string) bool {
	return e.FromAccount != nil && *e.FromAccount == accountID
}
