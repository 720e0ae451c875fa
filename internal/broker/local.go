package broker

import (
	"context"
	"fmt"
	"log/slog"
)

// LocalQueue is an in-process order queue used when no Kafka brokers are
// configured. Enqueue never blocks; a full queue is an error the caller
// compensates for.
type LocalQueue struct {
	jobs      chan OrderMessage
	completer Completer
	logger    *slog.Logger
}

// NewLocalQueue builds a loopback queue delivering to completer.
func NewLocalQueue(completer Completer, logger *slog.Logger) *LocalQueue {
	return &LocalQueue{
		jobs:      make(chan OrderMessage, 256),
		completer: completer,
		logger:    logger,
	}
}

// Enqueue hands msg to the loopback consumer without blocking.
func (q *LocalQueue) Enqueue(ctx context.Context, msg OrderMessage) error {
	select {
	case q.jobs <- msg:
		return nil
	default:
		return fmt.Errorf("local order queue full (order %d)", msg.OrderID)
	}
}

// Run consumes queued messages until ctx is cancelled.
func (q *LocalQueue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-q.jobs:
			if _, err := q.completer.CompleteOrder(ctx, msg.OrderID, msg.TwoPhase); err != nil {
				q.logger.Error("queued completion failed", "order_id", msg.OrderID, "error", err)
			}
		}
	}
}

// NopPublisher discards all events. Used when streaming is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishQuotePriceChange(context.Context, QuotePriceChange) error { return nil }
func (NopPublisher) PublishPriceChangeList(context.Context, PriceChangeListUpdate) error {
	return nil
}
func (NopPublisher) PublishMarketSummary(context.Context, MarketSummaryUpdate) error { return nil }
