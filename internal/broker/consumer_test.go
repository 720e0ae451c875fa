package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// scriptedReader feeds a fixed set of messages, then blocks until the
// context is cancelled.
type scriptedReader struct {
	messages []kafka.Message
	closed   bool
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

func kafkaMessage(t *testing.T, v any) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return kafka.Message{Value: payload}
}

func TestConsumerCompletesOrders(t *testing.T) {
	completer := &stubCompleter{}
	reader := &scriptedReader{messages: []kafka.Message{
		kafkaMessage(t, NewOrderMessage(3, true)),
		kafkaMessage(t, NewOrderMessage(5, true)),
	}}
	consumer := NewConsumer(reader, completer, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = consumer.Run(ctx)

	if completer.completed.Load() != 2 {
		t.Errorf("expected 2 completions, got %d", completer.completed.Load())
	}
	if completer.lastID.Load() != 5 {
		t.Errorf("expected order 5 completed last, got %d", completer.lastID.Load())
	}
}

func TestConsumerSkipsMalformedMessages(t *testing.T) {
	completer := &stubCompleter{}
	reader := &scriptedReader{messages: []kafka.Message{
		{Value: []byte("not json")},
		kafkaMessage(t, NewOrderMessage(3, true)),
	}}
	consumer := NewConsumer(reader, completer, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = consumer.Run(ctx)

	if completer.completed.Load() != 1 {
		t.Errorf("expected malformed message skipped, got %d completions", completer.completed.Load())
	}
}

func TestConsumerIgnoresOtherCommands(t *testing.T) {
	completer := &stubCompleter{}
	msg := NewOrderMessage(3, true)
	msg.Command = CommandUpdateQuote
	reader := &scriptedReader{messages: []kafka.Message{kafkaMessage(t, msg)}}
	consumer := NewConsumer(reader, completer, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = consumer.Run(ctx)

	if completer.completed.Load() != 0 {
		t.Errorf("expected non-order command ignored, got %d completions", completer.completed.Load())
	}
}

func TestOrderMessageFields(t *testing.T) {
	before := time.Now().UnixMilli()
	msg := NewOrderMessage(42, true)
	after := time.Now().UnixMilli()

	if msg.Command != CommandNewOrder {
		t.Errorf("expected command %s, got %s", CommandNewOrder, msg.Command)
	}
	if msg.OrderID != 42 || !msg.TwoPhase {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.MessageID == "" {
		t.Error("expected a message ID")
	}
	if msg.PublishTime < before || msg.PublishTime > after {
		t.Errorf("publish time %d outside [%d, %d]", msg.PublishTime, before, after)
	}
}
