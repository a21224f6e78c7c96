package redisstream

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"profile-backend/application/ports"
	"profile-backend/domain/events"
)

// Publisher emits domain events onto a Redis stream with XADD. Consumers pick
// them up through consumer groups and handle their own retries; from the
// core's perspective publishing is fire-and-forget.
type Publisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewPublisher creates a stream publisher
func NewPublisher(client *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"aggregate_id": event.GetAggregateID(),
			"event_type":   event.GetEventType(),
			"payload":      string(payload),
		},
	}).Err()
	if err != nil {
		p.logger.Warn("event publish failed",
			zap.String("event_type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// PublishBatch sends multiple events, continuing past individual failures
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	var lastErr error
	for _, event := range batch {
		if err := p.Publish(ctx, event); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

var _ ports.EventPublisher = (*Publisher)(nil)
