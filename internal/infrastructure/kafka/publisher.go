package kafka

import (
	"context"
	"fmt"

	"pawnshop-backend/internal/domain/event"

	"go.uber.org/zap"
)

// EventPublisher sends outbox entries to one topic, keyed by aggregate so a ticket's
// events stay ordered within a partition.
type EventPublisher struct {
	producer *Producer
	topic    string
	log      *zap.Logger
}

func NewEventPublisher(producer *Producer, topic string, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic, log: log}
}

func (p *EventPublisher) Publish(ctx context.Context, entries ...event.OutboxEntry) error {
	messages := make([]Message, 0, len(entries))
	for _, e := range entries {
		p.log.Debug("publishing lifecycle event",
			zap.String("event_type", e.EventType),
			zap.String("aggregate_id", e.AggregateID),
			zap.String("topic", p.topic),
			zap.Int("payload_size", len(e.Payload)),
		)
		messages = append(messages, Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: map[string]string{
				"event_id":       e.ID,
				"event_type":     e.EventType,
				"aggregate_type": e.AggregateType,
			},
		})
	}
	if len(messages) == 0 {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
