// Package events publishes stock change events to Redis pub/sub so other
// back-office services can react to ledger mutations.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stockroom/internal/domain/stock"
)

// Channel is the pub/sub channel stock change events are published on.
const Channel = "stock:adjusted"

// Compile-time check that Publisher implements stock.Notifier.
var _ stock.Notifier = (*Publisher)(nil)

// Publisher sends ChangeEvents to Redis as JSON. Publishing happens after
// commit; subscribers get at-most-once delivery.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a stock event publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// StockChanged publishes the event.
func (p *Publisher) StockChanged(ctx context.Context, event stock.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	return nil
}
