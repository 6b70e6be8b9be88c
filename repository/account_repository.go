package repository

import (
	"context"
	"fmt"

	"treats/database"
	"treats/domain/entities"
	"treats/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, balance, total_given, total_received, created_at, updated_at`

// AccountRepository implements the AccountRepository interface over Postgres
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates an account repository over the connection pool
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepository creates an account repository bound to a transaction
func newAccountRepository(tx Queryable) interfaces.AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var a entities.Account
	err := row.Scan(
		&a.ID,
		&a.Balance,
		&a.TotalGiven,
		&a.TotalReceived,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an account, or nil if it does not exist
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}

	return account, nil
}

// GetByIDForUpdate retrieves an account holding a row lock until the
// surrounding transaction ends. Concurrent gives from the same sender queue
// on this lock, so the second always sees the first's debit.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1 FOR UPDATE`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s for update: %w", id, err)
	}

	return account, nil
}

// Create creates an account with a zero starting balance
func (r *AccountRepository) Create(ctx context.Context, id string) (*entities.Account, error) {
	query := `
		INSERT INTO accounts (id)
		VALUES ($1)
		RETURNING id, balance, total_given, total_received, created_at, updated_at
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", id, err)
	}

	return account, nil
}

// DebitForGive removes amount from the balance and adds it to total_given
func (r *AccountRepository) DebitForGive(ctx context.Context, id string, amount int64) error {
	query := `
		UPDATE accounts
		SET balance = balance - $2,
		    total_given = total_given + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to debit account %s by %d: %w", id, amount, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found for debit", id)
	}

	return nil
}

// CreditForGive adds amount to the balance and to total_received
func (r *AccountRepository) CreditForGive(ctx context.Context, id string, amount int64) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    total_received = total_received + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to credit account %s by %d: %w", id, amount, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found for credit", id)
	}

	return nil
}

// Credit adds amount to the balance without touching the counters. The
// counters track give entries only, so purchases never affect the leaderboard.
func (r *AccountRepository) Credit(ctx context.Context, id string, amount int64) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to credit account %s by %d: %w", id, amount, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found for credit", id)
	}

	return nil
}

// SetDerived overwrites the cached balance and counters with ledger-derived
// values; only the reconciliation pass calls this
func (r *AccountRepository) SetDerived(ctx context.Context, id string, balance, totalGiven, totalReceived int64) error {
	query := `
		UPDATE accounts
		SET balance = $2,
		    total_given = $3,
		    total_received = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, balance, totalGiven, totalReceived)
	if err != nil {
		return fmt.Errorf("failed to set derived values for account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found for reconciliation", id)
	}

	return nil
}

// ListTopByTotalReceived returns accounts ordered by the cached total_received
// counter descending, ties broken by ascending id for a stable order. Accounts
// that never received anything are not ranked.
func (r *AccountRepository) ListTopByTotalReceived(ctx context.Context, limit int) ([]*entities.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM accounts
		WHERE total_received > 0
		ORDER BY total_received DESC, id ASC
		LIMIT $1
	`, accountColumns)

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// GetAll returns all accounts
func (r *AccountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts ORDER BY id`, accountColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]*entities.Account, error) {
	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
