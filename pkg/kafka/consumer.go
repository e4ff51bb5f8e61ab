// Package kafka carries the platform's two event streams over
// segmentio/kafka-go: index-complete announcements from the indexer to every
// searcher replica, and search analytics from searchers to the analytics
// service. Producers serialise events as JSON; consumers hand raw values to
// a MessageHandler, which usually starts with DecodeJSON.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads messages from a Kafka topic and dispatches them to a
// MessageHandler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler

	lastFetchErr atomic.Pointer[error]
	processed    atomic.Int64
}

// ConsumerOption adjusts the reader configuration of a Consumer.
type ConsumerOption func(*kafka.ReaderConfig)

// WithGroupID overrides the configured consumer group. Consumers that must
// each see every message, such as searcher replicas following index
// announcements, need a group of their own.
func WithGroupID(id string) ConsumerOption {
	return func(rc *kafka.ReaderConfig) { rc.GroupID = id }
}

// WithFromBeginning makes a group with no committed offset start at the
// oldest retained message instead of the newest.
func WithFromBeginning() ConsumerOption {
	return func(rc *kafka.ReaderConfig) { rc.StartOffset = kafka.FirstOffset }
}

// NewConsumer creates a Consumer for the given topic and handler.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler, opts ...ConsumerOption) *Consumer {
	rc := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		StartOffset: kafka.LastOffset,
	}
	for _, opt := range opts {
		opt(&rc)
	}

	return &Consumer{
		reader:  kafka.NewReader(rc),
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic, "group", rc.GroupID),
		handler: handler,
	}
}

// Start enters the consume loop, fetching and processing messages until ctx
// is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", "reason", ctx.Err())
			return c.reader.Close()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.lastFetchErr.Store(&err)
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		c.lastFetchErr.Store(nil)
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"value_size", len(msg.Value),
		)
		// A failed message stays uncommitted and is redelivered after a
		// rebalance or restart.
		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("failed to process message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			continue
		}
		c.processed.Add(1)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// Healthy returns the error from the most recent fetch if it failed, and nil
// once a fetch has succeeded again.
func (c *Consumer) Healthy() error {
	if errp := c.lastFetchErr.Load(); errp != nil {
		return *errp
	}
	return nil
}

// Processed returns how many messages the handler has accepted.
func (c *Consumer) Processed() int64 {
	return c.processed.Load()
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON is a generic helper that unmarshals a Kafka message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
