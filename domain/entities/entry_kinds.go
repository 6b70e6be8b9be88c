package entities

// EntryKind represents the type of ledger entry
type EntryKind string

// All entry kinds recorded in the ledger
const (
	// EntryKindGive is a peer-to-peer tip attached to a subject
	EntryKindGive EntryKind = "give"

	// EntryKindPurchase is a paid top-up credited through the payment webhook
	EntryKindPurchase EntryKind = "purchase"

	// EntryKindDailyBonus is a system-granted credit, at most one per UTC day
	EntryKindDailyBonus EntryKind = "daily_bonus"
)

// IsValid returns true if the kind is one of the declared entry kinds
func (k EntryKind) IsValid() bool {
	return k == EntryKindGive || k == EntryKindPurchase || k == EntryKindDailyBonus
}

// IsCreditOnly returns true for kinds that credit an account without a sender
func (k EntryKind) IsCreditOnly() bool {
	return k == EntryKindPurchase || k == EntryKindDailyBonus
}

// String returns the string representation of the entry kind
func (k EntryKind) String() string {
	return string(k)
}
