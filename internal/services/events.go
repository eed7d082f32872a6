package services

import (
	"context"
	"log"
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/metrics"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

// eventBatch collects events inside a transaction; they are published only
// after the transaction commits.
type eventBatch struct {
	actorID string
	now     time.Time
	events  []models.Event
}

func newEventBatch(actor models.Actor, now time.Time) *eventBatch {
	return &eventBatch{actorID: actor.ID, now: now}
}

func (b *eventBatch) add(eventType models.EventType, recordID, status string) {
	b.events = append(b.events, models.Event{
		Type:       eventType,
		RecordID:   recordID,
		Status:     status,
		ActorID:    b.actorID,
		OccurredAt: b.now,
	})
}

func (b *eventBatch) sessionsExpired(ids []string) {
	for _, id := range ids {
		b.add(models.EventSessionExpired, id, string(models.SessionExpired))
	}
	metrics.RecordExpirations("session", len(ids))
}

func (b *eventBatch) contractExpired(id string) {
	b.add(models.EventContractExpired, id, string(models.ContractExpired))
	metrics.RecordExpirations("contract", 1)
}

// publishAll never fails the request; broker errors are logged.
func publishAll(ctx context.Context, publisher ports.EventPublisher, batch *eventBatch) {
	if publisher == nil || batch == nil {
		return
	}
	for _, event := range batch.events {
		err := publisher.Publish(ctx, event)
		metrics.RecordPublish(string(event.Type), err)
		if err != nil {
			log.Printf("publish %s for %s: %v", event.Type, event.RecordID, err)
		}
	}
}
