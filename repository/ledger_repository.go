package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"treats/database"
	"treats/domain/entities"
	"treats/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const ledgerColumns = `id, from_account, to_account, subject_reference, amount, kind, description, external_reference, created_at`

// LedgerRepository implements the LedgerRepository interface over Postgres.
// The table is append-only; there are no update or delete methods.
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a ledger repository over the connection pool
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepository creates a ledger repository bound to a transaction
func newLedgerRepository(tx Queryable) interfaces.LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record appends a new entry, filling its ID and CreatedAt. A collision on
// external_reference surfaces as entities.ErrDuplicateReference so the credit
// engine can take the duplicate path instead of failing.
func (r *LedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}

	query := `
		INSERT INTO ledger_entries
		(from_account, to_account, subject_reference, amount, kind, description, external_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.FromAccount,
		entry.ToAccount,
		entry.SubjectReference,
		entry.Amount,
		entry.Kind,
		entry.Description,
		entry.ExternalReference,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" &&
			pgErr.ConstraintName == "idx_ledger_entries_external_reference" {
			return entities.ErrDuplicateReference
		}
		return fmt.Errorf("failed to record ledger entry for account %s: %w", entry.ToAccount, err)
	}

	return nil
}

// GetByExternalReference retrieves the entry carrying an idempotency key, or
// nil if none exists
func (r *LedgerRepository) GetByExternalReference(ctx context.Context, ref string) (*entities.LedgerEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM ledger_entries WHERE external_reference = $1`, ledgerColumns)

	entry, err := scanLedgerEntry(r.q.QueryRow(ctx, query, ref))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry by external reference %s: %w", ref, err)
	}

	return entry, nil
}

// GetByAccount returns entries touching an account, newest first
func (r *LedgerRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ledger_entries
		WHERE to_account = $1 OR from_account = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, ledgerColumns)

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// TopReceiversSince aggregates give entries created at or after since, grouped
// by receiver. The cached counters cannot answer this because they are never
// decayed, so the window is recomputed from the immutable ledger.
func (r *LedgerRepository) TopReceiversSince(ctx context.Context, since time.Time, limit int) ([]*entities.ReceiverTotal, error) {
	query := `
		SELECT to_account, SUM(amount) AS total_received
		FROM ledger_entries
		WHERE kind = 'give' AND created_at >= $1
		GROUP BY to_account
		ORDER BY total_received DESC, to_account ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top receivers since %v: %w", since, err)
	}
	defer rows.Close()

	var totals []*entities.ReceiverTotal
	for rows.Next() {
		var t entities.ReceiverTotal
		if err := rows.Scan(&t.AccountID, &t.TotalReceived); err != nil {
			return nil, fmt.Errorf("failed to scan receiver total: %w", err)
		}
		totals = append(totals, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receiver totals: %w", err)
	}

	return totals, nil
}

// AccountTotals recomputes balance and counters from the ledger for every
// account that appears in it. Credits count toward the balance for all kinds;
// the give counters cover give entries only.
func (r *LedgerRepository) AccountTotals(ctx context.Context) ([]*entities.AccountTotals, error) {
	query := `
		SELECT account_id,
		       SUM(credited) - SUM(debited) AS balance,
		       SUM(given) AS total_given,
		       SUM(received) AS total_received
		FROM (
			SELECT to_account AS account_id,
			       amount AS credited,
			       0::BIGINT AS debited,
			       0::BIGINT AS given,
			       CASE WHEN kind = 'give' THEN amount ELSE 0 END AS received
			FROM ledger_entries
			UNION ALL
			SELECT from_account AS account_id,
			       0::BIGINT,
			       amount,
			       amount,
			       0::BIGINT
			FROM ledger_entries
			WHERE from_account IS NOT NULL
		) movements
		GROUP BY account_id
		ORDER BY account_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to compute account totals: %w", err)
	}
	defer rows.Close()

	var totals []*entities.AccountTotals
	for rows.Next() {
		var t entities.AccountTotals
		if err := rows.Scan(&t.AccountID, &t.Balance, &t.TotalGiven, &t.TotalReceived); err != nil {
			return nil, fmt.Errorf("failed to scan account totals: %w", err)
		}
		totals = append(totals, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account totals: %w", err)
	}

	return totals, nil
}

func scanLedgerEntry(row pgx.Row) (*entities.LedgerEntry, error) {
	var e entities.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.FromAccount,
		&e.ToAccount,
		&e.SubjectReference,
		&e.Amount,
		&e.Kind,
		&e.Description,
		&e.ExternalReference,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
