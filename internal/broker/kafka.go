package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/segmentio/kafka-go"
)

// KafkaQueue publishes order completion requests to a Kafka topic.
type KafkaQueue struct {
	writer *kafka.Writer
}

// NewKafkaQueue builds a queue writing to topic on the given brokers.
func NewKafkaQueue(brokers []string, topic string) *KafkaQueue {
	return &KafkaQueue{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Enqueue publishes msg keyed by its order ID.
func (q *KafkaQueue) Enqueue(ctx context.Context, msg OrderMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal order message: %w", err)
	}
	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(msg.OrderID)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write order message: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

// KafkaPublisher streams quote and market events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher writing to topic on the given
// brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// PublishQuotePriceChange streams a single quote update keyed by symbol.
func (p *KafkaPublisher) PublishQuotePriceChange(ctx context.Context, msg QuotePriceChange) error {
	return p.publish(ctx, msg.Symbol, msg)
}

// PublishPriceChangeList streams a recent-list event keyed by symbol.
func (p *KafkaPublisher) PublishPriceChangeList(ctx context.Context, msg PriceChangeListUpdate) error {
	return p.publish(ctx, msg.Symbol, msg)
}

// PublishMarketSummary streams a market summary snapshot.
func (p *KafkaPublisher) PublishMarketSummary(ctx context.Context, msg MarketSummaryUpdate) error {
	return p.publish(ctx, "marketSummary", msg)
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Completer finalizes orders on behalf of the consumer.
type Completer interface {
	CompleteOrder(ctx context.Context, orderID int, twoPhase bool) (*domain.Order, error)
}

// KafkaReader is the subset of kafka.Reader the consumer needs.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewKafkaReader builds a reader for the order queue topic in the given
// consumer group.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Consumer reads order messages from Kafka and completes them.
type Consumer struct {
	reader    KafkaReader
	completer Completer
	logger    *slog.Logger
}

// NewConsumer builds a consumer over reader delivering to completer.
func NewConsumer(reader KafkaReader, completer Completer, logger *slog.Logger) *Consumer {
	return &Consumer{reader: reader, completer: completer, logger: logger}
}

// Run reads messages until ctx is cancelled. Malformed or failing
// messages are logged and skipped so a poison message cannot wedge the
// consumer.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			c.logger.Error("order queue read failed", "error", err)
			continue
		}
		c.handle(ctx, msg.Value)
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var msg OrderMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Error("order message unmarshal failed", "error", err)
		return
	}
	if msg.Command != CommandNewOrder {
		c.logger.Warn("unexpected order queue command", "command", msg.Command)
		return
	}
	if _, err := c.completer.CompleteOrder(ctx, msg.OrderID, msg.TwoPhase); err != nil {
		c.logger.Error("queued completion failed", "order_id", msg.OrderID, "error", err)
	}
}
