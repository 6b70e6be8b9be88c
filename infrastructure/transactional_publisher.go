package infrastructure

import (
	"context"

	"treats/domain/events"
	"treats/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// TransactionalPublisher buffers events for one unit of work. Flush runs after
// a successful commit; Discard runs on rollback, so consumers never observe an
// event for data that was not committed.
type TransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewTransactionalPublisher creates a transactional publisher delegating to
// the given real publisher
func NewTransactionalPublisher(realPublisher interfaces.EventPublisher) *TransactionalPublisher {
	return &TransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish queues an event without delivering it
func (p *TransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush delivers all queued events. Individual delivery failures are logged
// and skipped so one bad event does not block the rest.
func (p *TransactionalPublisher) Flush(ctx context.Context) error {
	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
	return nil
}

// Discard drops all queued events without delivering them
func (p *TransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	}
	p.pending = p.pending[:0]
}
