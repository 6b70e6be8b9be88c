package interfaces

import (
	"context"
	"time"

	"treats/domain/entities"
)

// AccountRepository defines the interface for account balance data access.
// All balance-mutating methods run inside a unit of work; reads may run
// against the pool directly.
type AccountRepository interface {
	// GetByID retrieves an account, or nil if it does not exist
	GetByID(ctx context.Context, id string) (*entities.Account, error)

	// GetByIDForUpdate retrieves an account holding a row lock until the
	// surrounding transaction ends. Must only be called inside a unit of work.
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Account, error)

	// Create creates an account with a zero starting balance
	Create(ctx context.Context, id string) (*entities.Account, error)

	// DebitForGive removes amount from the balance and adds it to total_given
	DebitForGive(ctx context.Context, id string, amount int64) error

	// CreditForGive adds amount to the balance and to total_received
	CreditForGive(ctx context.Context, id string, amount int64) error

	// Credit adds amount to the balance without touching the counters;
	// used for purchase and daily bonus credits
	Credit(ctx context.Context, id string, amount int64) error

	// SetDerived overwrites the cached balance and counters; reconciliation only
	SetDerived(ctx context.Context, id string, balance, totalGiven, totalReceived int64) error

	// ListTopByTotalReceived returns accounts ordered by the cached
	// total_received counter descending, ties broken by ascending id
	ListTopByTotalReceived(ctx context.Context, limit int) ([]*entities.Account, error)

	// GetAll returns all accounts
	GetAll(ctx context.Context) ([]*entities.Account, error)
}

// LedgerRepository defines the interface for the append-only ledger
type LedgerRepository interface {
	// Record appends a new entry, filling its ID and CreatedAt. Returns
	// entities.ErrDuplicateReference when the entry's external reference is
	// already recorded.
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByExternalReference retrieves the entry carrying an idempotency key,
	// or nil if none exists
	GetByExternalReference(ctx context.Context, ref string) (*entities.LedgerEntry, error)

	// GetByAccount returns entries touching an account, newest first
	GetByAccount(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error)

	// TopReceiversSince aggregates give entries created at or after since,
	// grouped by receiver, ordered by sum descending then account id
	TopReceiversSince(ctx context.Context, since time.Time, limit int) ([]*entities.ReceiverTotal, error)

	// AccountTotals recomputes balance and counters for every account that
	// appears in the ledger
	AccountTotals(ctx context.Context) ([]*entities.AccountTotals, error)
}
