package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"treats/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// eventEnvelope is the wire format for published events. Consumers dispatch
// on EventType and decode Payload accordingly.
type eventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher implements the EventPublisher interface over NATS
type NATSEventPublisher struct {
	natsClient *NATSClient
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{natsClient: natsClient}
}

// Publish serializes the event into an envelope and publishes it to the
// subject derived from its type
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := eventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "treats-service",
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := subjectForEvent(event.Type())
	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type(), err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"subject":   subject,
		"eventId":   envelope.EventID,
	}).Debug("Published event to NATS")

	return nil
}

// subjectForEvent maps an event type to its NATS subject
func subjectForEvent(t events.EventType) string {
	switch t {
	case events.EventTypeTreatsGiven:
		return "treats.given"
	case events.EventTypeTreatsPurchased:
		return "treats.purchased"
	case events.EventTypeDailyBonusGranted:
		return "treats.daily_bonus"
	case events.EventTypeAccountCreated:
		return "treats.account_created"
	}
	return fmt.Sprintf("treats.%s", t)
}
