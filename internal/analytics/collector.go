package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/pkg/kafka"
)

const (
	maxBatchSize  = 100
	flushInterval = time.Second
)

// Publisher ships batches of events to the analytics topic.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector records events into a local Aggregator synchronously and, when a
// Publisher is configured, forwards them through a bounded buffer in batches
// of up to maxBatchSize, flushed at least every flushInterval. A full buffer
// drops events rather than blocking the query path.
type Collector struct {
	publisher Publisher
	local     *Aggregator
	eventCh   chan any
	logger    *slog.Logger
	done      chan struct{}
}

func NewCollector(publisher Publisher, local *Aggregator, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		local:     local,
		eventCh:   make(chan any, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

// Start launches the publish loop. Without a Publisher it only arranges for
// Close to return immediately.
func (c *Collector) Start(ctx context.Context) {
	if c.publisher == nil {
		close(c.done)
		return
	}
	go c.run(ctx)
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, maxBatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := c.publisher.PublishBatch(ctx, batch); err != nil {
			c.logger.Error("failed to publish analytics batch", "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				flush(context.Background())
				return
			}
			batch = append(batch, kafka.Event{Key: "analytics", Value: event})
			if len(batch) >= maxBatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			batch = c.drain(batch)
			flush(context.Background())
			return
		}
	}
}

// drain appends whatever is already buffered without waiting for more.
func (c *Collector) drain(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, kafka.Event{Key: "analytics", Value: event})
		default:
			return batch
		}
	}
}

func (c *Collector) Track(event any) {
	if c.local != nil {
		c.local.Record(event)
	}
	if c.publisher == nil {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for buffered ones to be published.
// It must be called at most once, after Start.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}
