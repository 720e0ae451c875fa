package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
)

// stubCompleter records completed order IDs.
type stubCompleter struct {
	completed atomic.Int64
	lastID    atomic.Int64
	err       error
}

func (c *stubCompleter) CompleteOrder(ctx context.Context, orderID int, twoPhase bool) (*domain.Order, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.completed.Add(1)
	c.lastID.Store(int64(orderID))
	return &domain.Order{ID: orderID, Status: domain.OrderStatusClosed}, nil
}

func TestParseOrderProcessingMode(t *testing.T) {
	tests := []struct {
		in   string
		want OrderProcessingMode
	}{
		{"", Synchronous},
		{"sync", Synchronous},
		{"async", Asynchronous},
		{"async_twophase", QueuedTwoPhase},
	}
	for _, tt := range tests {
		got, err := ParseOrderProcessingMode(tt.in)
		if err != nil {
			t.Errorf("ParseOrderProcessingMode(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseOrderProcessingMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var verr *domain.ValidationError
	if _, err := ParseOrderProcessingMode("bogus"); !errors.As(err, &verr) {
		t.Errorf("expected validation error for bogus mode, got %v", err)
	}
}

func TestDispatchSynchronousCompletesInline(t *testing.T) {
	completer := &stubCompleter{}
	d := NewDispatcher(&stubQueue{}, time.Millisecond, 1, testLogger())
	d.SetCompleter(completer)

	if err := d.Dispatch(context.Background(), 7, Synchronous); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if completer.completed.Load() != 1 || completer.lastID.Load() != 7 {
		t.Errorf("expected inline completion of order 7")
	}
}

func TestDispatchSynchronousPropagatesError(t *testing.T) {
	completer := &stubCompleter{err: domain.ErrOrderCompleted}
	d := NewDispatcher(&stubQueue{}, time.Millisecond, 1, testLogger())
	d.SetCompleter(completer)

	err := d.Dispatch(context.Background(), 7, Synchronous)
	if !errors.Is(err, domain.ErrOrderCompleted) {
		t.Errorf("expected ErrOrderCompleted, got %v", err)
	}
}

func TestDispatchAsynchronousCompletesOnWorker(t *testing.T) {
	completer := &stubCompleter{}
	d := NewDispatcher(&stubQueue{}, time.Millisecond, 2, testLogger())
	d.SetCompleter(completer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	if err := d.Dispatch(ctx, 9, Asynchronous); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for completer.completed.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("order never completed asynchronously")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if completer.lastID.Load() != 9 {
		t.Errorf("expected order 9 completed, got %d", completer.lastID.Load())
	}
}

func TestDispatchQueuedPublishesMessage(t *testing.T) {
	completer := &stubCompleter{}
	queue := &stubQueue{}
	d := NewDispatcher(queue, time.Millisecond, 1, testLogger())
	d.SetCompleter(completer)

	if err := d.Dispatch(context.Background(), 11, QueuedTwoPhase); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if completer.completed.Load() != 0 {
		t.Error("queued dispatch must not complete inline")
	}
	if len(queue.messages) != 1 {
		t.Fatalf("expected 1 queued message, got %d", len(queue.messages))
	}
	msg := queue.messages[0]
	if msg.OrderID != 11 || !msg.TwoPhase {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.MessageID == "" {
		t.Error("expected a message ID")
	}
}

func TestDispatchQueuedFailureWrapsErrDispatchFailed(t *testing.T) {
	d := NewDispatcher(&stubQueue{fail: true}, time.Millisecond, 1, testLogger())
	d.SetCompleter(&stubCompleter{})

	err := d.Dispatch(context.Background(), 11, QueuedTwoPhase)
	if !errors.Is(err, domain.ErrDispatchFailed) {
		t.Errorf("expected ErrDispatchFailed, got %v", err)
	}
}
