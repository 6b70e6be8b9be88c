package testutil

import (
	"context"
	"testing"

	"treats/database"
	"treats/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestAccount inserts an account row directly, bypassing the repository
// under test
func CreateTestAccount(t *testing.T, db *database.DB, id string, balance int64) {
	_, err := db.Exec(context.Background(),
		`INSERT INTO accounts (id, balance) VALUES ($1, $2)`, id, balance)
	require.NoError(t, err)
}

// GiveEntry builds a valid give ledger entry between two accounts
func GiveEntry(from, to, subject string, amount int64) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		FromAccount:      &from,
		ToAccount:        to,
		SubjectReference: &subject,
		Amount:           amount,
		Kind:             entities.EntryKindGive,
		Description:      "treats for " + subject,
	}
}

// PurchaseEntry builds a valid purchase ledger entry carrying an idempotency key
func PurchaseEntry(to string, amount int64, externalReference string) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		ToAccount:         to,
		Amount:            amount,
		Kind:              entities.EntryKindPurchase,
		Description:       "treat pack",
		ExternalReference: &externalReference,
	}
}
