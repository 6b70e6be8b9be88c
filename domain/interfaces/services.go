package interfaces

import (
	"context"

	"treats/domain/entities"
	"treats/domain/events"
)

// TransferService executes peer-to-peer give operations
type TransferService interface {
	// GiveTreats moves amount from the sender to the owner of the subject.
	// Failures carry an entities.ErrorKind; on any failure nothing is mutated.
	GiveTreats(ctx context.Context, senderID, subjectID string, amount int64) (*entities.GiveResult, error)
}

// CreditService executes idempotent top-up operations
type CreditService interface {
	// PurchaseTreats credits amount to the account at most once per distinct
	// externalReference. A retry returns Duplicate=true with the current balance.
	PurchaseTreats(ctx context.Context, userID string, amount int64, description, externalReference string) (*entities.PurchaseResult, error)

	// GrantDailyBonus credits the daily bonus, at most once per account per
	// UTC day, sharing the purchase idempotency mechanism
	GrantDailyBonus(ctx context.Context, userID string, amount int64) (*entities.PurchaseResult, error)
}

// LeaderboardService ranks accounts by treats received
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, period entities.LeaderboardPeriod) ([]*entities.LeaderboardEntry, error)
}

// AccountService covers account lifecycle and read-only lookups
type AccountService interface {
	// EnsureAccount creates the account for a new identity if it does not
	// already exist; calling it twice is safe
	EnsureAccount(ctx context.Context, id string) (*entities.Account, error)

	// GetAccount retrieves an account or fails with not_found
	GetAccount(ctx context.Context, id string) (*entities.Account, error)

	// GetHistory returns an account's ledger entries, newest first
	GetHistory(ctx context.Context, id string, limit int) ([]*entities.LedgerEntry, error)
}

// ReconciliationService recomputes cached balances from the ledger
type ReconciliationService interface {
	Reconcile(ctx context.Context) (*entities.ReconciliationReport, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding unit of
// work resolves: Flush after commit, Discard after rollback
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

// UnitOfWork represents one atomic unit against the data store. Repositories
// obtained from it share the same transaction; events published through
// EventBus are flushed only after a successful commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// SubjectResolver resolves the owning account of a subject (e.g. a photo).
// It lives in the external photo service; an unknown subject resolves to "".
type SubjectResolver interface {
	OwnerOf(ctx context.Context, subjectID string) (string, error)
}

// ProfileDirectory supplies display metadata from the external identity
// service for leaderboard rows. Unknown ids are simply absent from the map.
type ProfileDirectory interface {
	GetProfiles(ctx context.Context, accountIDs []string) (map[string]entities.Profile, error)
}
