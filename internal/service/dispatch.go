package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/efreitasn/gotrade/internal/broker"
	"github.com/efreitasn/gotrade/internal/domain"
)

// OrderProcessingMode selects how a new order reaches completion.
type OrderProcessingMode int

const (
	// Synchronous completes the order inline before the call returns.
	Synchronous OrderProcessingMode = iota
	// Asynchronous completes the order on a background worker after a
	// short delay.
	Asynchronous
	// QueuedTwoPhase publishes the order to the queue for a consumer to
	// complete.
	QueuedTwoPhase
)

func (m OrderProcessingMode) String() string {
	switch m {
	case Synchronous:
		return "sync"
	case Asynchronous:
		return "async"
	case QueuedTwoPhase:
		return "async_twophase"
	default:
		return fmt.Sprintf("OrderProcessingMode(%d)", int(m))
	}
}

// ParseOrderProcessingMode parses the wire form of a processing mode. The
// empty string defaults to Synchronous.
func ParseOrderProcessingMode(s string) (OrderProcessingMode, error) {
	switch s {
	case "", "sync":
		return Synchronous, nil
	case "async":
		return Asynchronous, nil
	case "async_twophase":
		return QueuedTwoPhase, nil
	default:
		return Synchronous, &domain.ValidationError{Message: fmt.Sprintf("unknown order processing mode %q", s)}
	}
}

// OrderQueue publishes order completion requests for external consumers.
type OrderQueue interface {
	Enqueue(ctx context.Context, msg broker.OrderMessage) error
}

// Dispatcher routes new orders to completion according to their processing
// mode.
type Dispatcher struct {
	completer OrderCompleter
	queue     OrderQueue
	delay     time.Duration
	jobs      chan int
	workers   int
	logger    *slog.Logger
}

// NewDispatcher builds a dispatcher. delay is how long async orders wait
// before completing; workers is the number of background completion
// goroutines started by Start.
func NewDispatcher(queue OrderQueue, delay time.Duration, workers int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:   queue,
		delay:   delay,
		jobs:    make(chan int, 256),
		workers: workers,
		logger:  logger,
	}
}

// SetCompleter attaches the order completer. Must be called before Start
// or Dispatch.
func (d *Dispatcher) SetCompleter(c OrderCompleter) {
	d.completer = c
}

// Start launches the async completion workers. They run until ctx is
// cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.worker(ctx)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case orderID := <-d.jobs:
			if d.delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(d.delay):
				}
			}
			if _, err := d.completer.CompleteOrder(ctx, orderID, false); err != nil {
				d.logger.Error("async completion failed", "order_id", orderID, "error", err)
			}
		}
	}
}

// Dispatch routes orderID to completion. Synchronous orders complete
// before Dispatch returns; asynchronous ones are handed to a worker;
// queued ones are published to the order queue for two-phase completion.
func (d *Dispatcher) Dispatch(ctx context.Context, orderID int, mode OrderProcessingMode) error {
	switch mode {
	case Synchronous:
		if _, err := d.completer.CompleteOrder(ctx, orderID, false); err != nil {
			return fmt.Errorf("complete order %d: %w", orderID, err)
		}
		return nil

	case Asynchronous:
		select {
		case d.jobs <- orderID:
			return nil
		default:
			return fmt.Errorf("order %d: worker queue full: %w", orderID, domain.ErrDispatchFailed)
		}

	case QueuedTwoPhase:
		msg := broker.NewOrderMessage(orderID, true)
		if err := d.queue.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("enqueue order %d: %w: %w", orderID, domain.ErrDispatchFailed, err)
		}
		return nil

	default:
		return &domain.ValidationError{Message: fmt.Sprintf("unknown order processing mode %d", mode)}
	}
}
