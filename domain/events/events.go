package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTreatsGiven       EventType = "treats_given"
	EventTypeTreatsPurchased   EventType = "treats_purchased"
	EventTypeDailyBonusGranted EventType = "daily_bonus_granted"
	EventTypeAccountCreated    EventType = "account_created"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TreatsGivenEvent is published after a give commits. The notification
// dispatcher consumes it to tell the receiver about the tip.
type TreatsGivenEvent struct {
	SenderID         string `json:"sender_id"`
	ReceiverID       string `json:"receiver_id"`
	SubjectReference string `json:"subject_reference"`
	Amount           int64  `json:"amount"`
	SenderBalance    int64  `json:"sender_balance"`
}

func (e TreatsGivenEvent) Type() EventType {
	return EventTypeTreatsGiven
}

// TreatsPurchasedEvent is published after a paid top-up commits
type TreatsPurchasedEvent struct {
	AccountID         string `json:"account_id"`
	Amount            int64  `json:"amount"`
	NewBalance        int64  `json:"new_balance"`
	ExternalReference string `json:"external_reference"`
}

func (e TreatsPurchasedEvent) Type() EventType {
	return EventTypeTreatsPurchased
}

// DailyBonusGrantedEvent is published after a daily bonus commits
type DailyBonusGrantedEvent struct {
	AccountID  string `json:"account_id"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
}

func (e DailyBonusGrantedEvent) Type() EventType {
	return EventTypeDailyBonusGranted
}

// AccountCreatedEvent is published when an account row is created for a new
// identity
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}
