package entities

// GiveResult is returned from a successful give operation. ReceiverID lets the
// caller dispatch a notification without resolving the subject again.
type GiveResult struct {
	NewBalance int64
	ReceiverID string
}

// PurchaseResult is returned from a successful purchase or daily bonus grant.
// Duplicate marks a recognized retry: the credit was applied by an earlier
// request and NewBalance is the account's current balance, not the original
// post-credit echo.
type PurchaseResult struct {
	NewBalance int64
	Duplicate  bool
}

// AccountTotals is the ledger-derived truth for one account: balance and
// counters recomputed from entries, used to detect drift in the cached columns
type AccountTotals struct {
	AccountID     string
	Balance       int64
	TotalGiven    int64
	TotalReceived int64
}

// ReconciliationReport summarizes one reconciliation pass
type ReconciliationReport struct {
	Checked  int
	Drifted  int
	Repaired int
}
