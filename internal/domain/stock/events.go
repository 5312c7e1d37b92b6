package stock

import (
	"context"
	"time"
)

// ChangeKind describes what produced a stock change event.
type ChangeKind string

const (
	ChangeAdjusted    ChangeKind = "adjusted"
	ChangeProvisioned ChangeKind = "provisioned"
)

// ChangeEvent is published after a successful commit so that read views
// (dashboard caches, live UIs) can refresh. It is an explicit notification,
// not shared mutable state: consumers only ever see committed records.
type ChangeEvent struct {
	Kind       ChangeKind  `json:"kind"`
	Record     StockRecord `json:"record"`
	Delta      int64       `json:"delta"`
	Reason     string      `json:"reason,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Notifier receives change events after commit. Implementations must be safe
// for concurrent use; errors are logged by the service, never surfaced.
type Notifier interface {
	StockChanged(ctx context.Context, event ChangeEvent) error
}

// Notifiers fans an event out to multiple notifiers.
type Notifiers []Notifier

// StockChanged delivers the event to every notifier, returning the first error.
func (n Notifiers) StockChanged(ctx context.Context, event ChangeEvent) error {
	var first error
	for _, notifier := range n {
		if err := notifier.StockChanged(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
