package entities

import "time"

// Account holds the spendable treat balance for one user identity.
// The identity itself lives in the external identity service; accounts are
// created when the identity is created and are never deleted while it exists.
type Account struct {
	ID            string    `db:"id"`
	Balance       int64     `db:"balance"`
	TotalGiven    int64     `db:"total_given"`
	TotalReceived int64     `db:"total_received"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// HasSufficientBalance checks if the account can cover an amount
func (a *Account) HasSufficientBalance(amount int64) bool {
	return a.Balance >= amount
}

// BalanceAfter calculates what the balance would be after a change
func (a *Account) BalanceAfter(changeAmount int64) int64 {
	return a.Balance + changeAmount
}
